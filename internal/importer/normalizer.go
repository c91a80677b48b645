package importer

import (
	"strings"

	"groupstats/domain/record"
	"groupstats/ports"
)

// Normalizer turns raw cell values into typed values
type Normalizer struct {
	none record.NoneStrings
}

// NewNormalizer creates a normalizer. An unset none-string set is replaced
// by the default one.
func NewNormalizer(none record.NoneStrings) Normalizer {
	if none.IsZero() {
		none = record.DefaultNoneStrings()
	}
	return Normalizer{none: none}
}

// Normalize trims text, maps none tokens to Null and applies c to what is
// left. Null input is returned untouched and never reaches c.
func (n Normalizer) Normalize(v record.Value, c ports.Coercer) (record.Value, error) {
	if v.IsNull() {
		return v, nil
	}
	if s, ok := v.AsText(); ok {
		trimmed := strings.TrimSpace(s)
		if n.none.Contains(trimmed) {
			return record.Null(), nil
		}
		v = record.Text(trimmed)
	}
	if c == nil {
		return v, nil
	}
	return c.Coerce(v)
}
