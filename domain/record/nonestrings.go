package record

import (
	"sort"
	"strings"
)

// DefaultNoneTokens are the text tokens that normalize to Null when no set is configured
var DefaultNoneTokens = []string{"null", "na", "n/a"}

// NoneStrings is a case-insensitive set of tokens read as Null.
// The zero value is unset; callers substitute the default set.
type NoneStrings struct {
	set map[string]struct{}
}

// NewNoneStrings builds a set. Calling it with no tokens gives an empty,
// but set, collection.
func NewNoneStrings(tokens ...string) NoneStrings {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}
	return NoneStrings{set: set}
}

// DefaultNoneStrings returns the default set
func DefaultNoneStrings() NoneStrings {
	return NewNoneStrings(DefaultNoneTokens...)
}

// IsZero reports whether the set was never configured
func (n NoneStrings) IsZero() bool {
	return n.set == nil
}

// Contains reports whether s, trimmed and lower-cased, is a none token
func (n NoneStrings) Contains(s string) bool {
	_, ok := n.set[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Tokens returns the set's tokens, sorted
func (n NoneStrings) Tokens() []string {
	out := make([]string, 0, len(n.set))
	for tok := range n.set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}
