// Package grouping defines how records are partitioned: selectors that
// derive one key component each, specs that combine selectors into a
// composite key, and the key and signature types produced from them.
package grouping

import (
	"fmt"
	"strings"

	"groupstats/domain/core"
	"groupstats/domain/record"
	"groupstats/ports"
)

// Selector derives one key component. With a nil Transform it reads the
// named column as-is.
type Selector struct {
	Column    string
	Transform ports.Transform
}

// By selects a column unchanged
func By(column string) Selector {
	return Selector{Column: column}
}

// ByTransform labels a derived component with column and computes it from
// the whole record
func ByTransform(column string, t ports.Transform) Selector {
	return Selector{Column: column, Transform: t}
}

// ByValue applies fn to the value of the named column. A record without
// that column fails with core.ErrMissingHeader.
func ByValue(column string, fn func(record.Value) (record.Value, error)) Selector {
	return Selector{
		Column: column,
		Transform: ports.TransformFunc(func(rec *record.Mapping) (record.Value, error) {
			v, ok := rec.Get(column)
			if !ok {
				return record.Null(), core.NewMissingHeaderError(column)
			}
			return fn(v)
		}),
	}
}

// IsIdentity reports whether the selector reads its column unchanged
func (s Selector) IsIdentity() bool {
	return s.Transform == nil
}

// Select evaluates the selector against a header-keyed record
func (s Selector) Select(rec *record.Mapping) (record.Value, error) {
	if s.Transform != nil {
		v, err := s.Transform.Derive(rec)
		if err != nil {
			return record.Null(), fmt.Errorf("transform %q: %w", s.Column, err)
		}
		return v, nil
	}
	v, ok := rec.Get(s.Column)
	if !ok {
		return record.Null(), core.NewMissingHeaderError(s.Column)
	}
	return v, nil
}

// Spec is an ordered list of selectors forming one composite key
type Spec []Selector

// ParseSpec builds a Spec from loosely typed items. Each item is a column
// name, a Selector, or a [2]any pair of column name and ports.Transform.
// Anything else fails with core.ErrInvalidSelector naming the item.
func ParseSpec(items ...any) (Spec, error) {
	spec := make(Spec, 0, len(items))
	for _, item := range items {
		sel, err := parseSelector(item)
		if err != nil {
			return nil, err
		}
		spec = append(spec, sel)
	}
	return spec, nil
}

func parseSelector(item any) (Selector, error) {
	switch it := item.(type) {
	case string:
		return By(it), nil
	case Selector:
		if it.Column == "" {
			return Selector{}, core.NewInvalidSelectorError(item)
		}
		return it, nil
	case [2]any:
		name, ok := it[0].(string)
		if !ok {
			return Selector{}, core.NewInvalidSelectorError(item)
		}
		switch t := it[1].(type) {
		case ports.Transform:
			return ByTransform(name, t), nil
		case func(*record.Mapping) (record.Value, error):
			return ByTransform(name, ports.TransformFunc(t)), nil
		}
	}
	return Selector{}, core.NewInvalidSelectorError(item)
}

// Validate checks that every selector names its column
func (s Spec) Validate() error {
	for _, sel := range s {
		if sel.Column == "" {
			return core.NewInvalidSelectorError(sel)
		}
	}
	return nil
}

// Signature lists the column labels of the spec in order
func (s Spec) Signature() Signature {
	sig := make(Signature, len(s))
	for i, sel := range s {
		sig[i] = sel.Column
	}
	return sig
}

// Signature identifies a grouping by its ordered column labels
type Signature []string

// Equal compares signatures element-wise
func (s Signature) Equal(o Signature) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Signature) String() string {
	return "(" + strings.Join(s, ", ") + ")"
}
