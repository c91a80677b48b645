package record

import "fmt"

// Shape is the container kind used for every record of one import
type Shape string

const (
	ShapeMapping  Shape = "mapping"
	ShapeSequence Shape = "sequence"
	ShapeTuple    Shape = "tuple"
)

// ParseShape validates a shape name
func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case ShapeMapping, ShapeSequence, ShapeTuple:
		return Shape(s), nil
	case "":
		return ShapeMapping, nil
	}
	return "", fmt.Errorf("unknown record shape %q (want mapping, sequence or tuple)", s)
}

// Record is one decoded row
type Record interface {
	Shape() Shape
	Len() int
	// Values returns the values-only ordered form of the record
	Values() []Value
}

// Mapping is a header-keyed record. Keys keep first-insertion order.
type Mapping struct {
	keys []string
	vals map[string]Value
}

// NewMapping zips headers and values; a repeated header keeps its first
// position and takes the later value.
func NewMapping(headers []string, values []Value) *Mapping {
	n := min(len(headers), len(values))
	m := &Mapping{
		keys: make([]string, 0, n),
		vals: make(map[string]Value, n),
	}
	for i := 0; i < n; i++ {
		m.Set(headers[i], values[i])
	}
	return m
}

func (m *Mapping) Shape() Shape { return ShapeMapping }
func (m *Mapping) Len() int     { return len(m.keys) }

// Get returns the value stored under header
func (m *Mapping) Get(header string) (Value, bool) {
	v, ok := m.vals[header]
	return v, ok
}

// Set stores a value, appending the header if it is new
func (m *Mapping) Set(header string, v Value) {
	if m.vals == nil {
		m.vals = make(map[string]Value)
	}
	if _, exists := m.vals[header]; !exists {
		m.keys = append(m.keys, header)
	}
	m.vals[header] = v
}

// Keys returns the headers in insertion order
func (m *Mapping) Keys() []string {
	return append([]string(nil), m.keys...)
}

func (m *Mapping) Values() []Value {
	out := make([]Value, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.vals[k]
	}
	return out
}

// Sequence is a mutable positional record
type Sequence struct {
	vals []Value
}

// NewSequence takes ownership of values
func NewSequence(values []Value) *Sequence {
	return &Sequence{vals: values}
}

func (s *Sequence) Shape() Shape { return ShapeSequence }
func (s *Sequence) Len() int     { return len(s.vals) }

// At returns the value at position i
func (s *Sequence) At(i int) Value {
	return s.vals[i]
}

// Set replaces the value at position i
func (s *Sequence) Set(i int, v Value) {
	s.vals[i] = v
}

// Append adds a derived column at the end
func (s *Sequence) Append(v Value) {
	s.vals = append(s.vals, v)
}

func (s *Sequence) Values() []Value {
	return append([]Value(nil), s.vals...)
}

// Tuple is a fixed-arity positional record. It cannot be changed once built.
type Tuple struct {
	vals []Value
}

// NewTuple copies values into a tuple
func NewTuple(values []Value) Tuple {
	return Tuple{vals: append([]Value(nil), values...)}
}

func (t Tuple) Shape() Shape { return ShapeTuple }
func (t Tuple) Len() int     { return len(t.vals) }

// At returns the value at position i
func (t Tuple) At(i int) Value {
	return t.vals[i]
}

func (t Tuple) Values() []Value {
	return append([]Value(nil), t.vals...)
}

// Build assembles values into the requested shape
func Build(shape Shape, headers []string, values []Value) (Record, error) {
	switch shape {
	case ShapeMapping, "":
		return NewMapping(headers, values), nil
	case ShapeSequence:
		return NewSequence(values), nil
	case ShapeTuple:
		return NewTuple(values), nil
	}
	return nil, fmt.Errorf("unknown record shape %q", shape)
}

// View returns a header-keyed view of r. Mappings are returned as-is so
// lookups see in-place changes; positional records are zipped with headers.
func View(r Record, headers []string) *Mapping {
	if m, ok := r.(*Mapping); ok {
		return m
	}
	return NewMapping(headers, r.Values())
}
