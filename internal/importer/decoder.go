package importer

import (
	"maps"

	"groupstats/domain/core"
	"groupstats/domain/record"
	"groupstats/ports"
)

// HeaderMap renames raw headers. Position entries take precedence over
// name entries; unmapped headers pass through.
type HeaderMap struct {
	ByIndex map[int]string
	ByName  map[string]string
}

// IsEmpty reports whether the map renames nothing
func (m HeaderMap) IsEmpty() bool {
	return len(m.ByIndex) == 0 && len(m.ByName) == 0
}

func (m HeaderMap) clone() HeaderMap {
	return HeaderMap{ByIndex: maps.Clone(m.ByIndex), ByName: maps.Clone(m.ByName)}
}

// ResolveHeaders maps each raw header to its canonical name
func ResolveHeaders(raw []string, m HeaderMap) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		if name, ok := m.ByIndex[i]; ok {
			out[i] = name
		} else if name, ok := m.ByName[h]; ok {
			out[i] = name
		} else {
			out[i] = h
		}
	}
	return out
}

// Decoder turns raw rows into records of one shape
type Decoder struct {
	headers    []string
	coercions  map[string]ports.Coercer
	shape      record.Shape
	normalizer Normalizer
}

// NewDecoder creates a decoder for rows laid out under the canonical headers
func NewDecoder(headers []string, coercions map[string]ports.Coercer, shape record.Shape, none record.NoneStrings) *Decoder {
	if shape == "" {
		shape = record.ShapeMapping
	}
	return &Decoder{
		headers:    headers,
		coercions:  coercions,
		shape:      shape,
		normalizer: NewNormalizer(none),
	}
}

// Decode pairs cells with headers by position. Cells beyond the last
// header, and headers beyond the last cell, are dropped.
func (d *Decoder) Decode(raw []record.Value) (record.Record, error) {
	n := min(len(raw), len(d.headers))
	values := make([]record.Value, n)
	for i := 0; i < n; i++ {
		header := d.headers[i]
		v, err := d.normalizer.Normalize(raw[i], d.coercions[header])
		if err != nil {
			return nil, core.NewCoercionError(header, raw[i].String(), err)
		}
		values[i] = v
	}
	return record.Build(d.shape, d.headers[:n], values)
}
