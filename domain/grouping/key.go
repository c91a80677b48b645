package grouping

import (
	"strings"

	"groupstats/domain/record"

	"github.com/zeebo/xxh3"
)

// Key is a composite group key, one value per selector. Keys compare by
// value so Integer 1 and Real 1.0 fall in the same group.
type Key []record.Value

// Equal compares keys element-wise by value
func (k Key) Equal(o Key) bool {
	if len(k) != len(o) {
		return false
	}
	for i := range k {
		if !k[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Hash returns the xxh3 hash of the key's canonical encoding
func (k Key) Hash() uint64 {
	buf := make([]byte, 0, 64*len(k))
	for _, v := range k {
		buf, _ = v.Key().AppendBinary(buf)
	}
	return xxh3.Hash(buf)
}

func (k Key) String() string {
	parts := make([]string, len(k))
	for i, v := range k {
		if v.IsNull() {
			parts[i] = "<null>"
		} else {
			parts[i] = v.String()
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Describe renders a key against its signature as "a: 1, b: x"
func Describe(sig Signature, key Key) string {
	parts := make([]string, 0, len(sig))
	for i, col := range sig {
		val := ""
		if i < len(key) {
			val = key[i].String()
		}
		parts = append(parts, col+": "+val)
	}
	return strings.Join(parts, ", ")
}
