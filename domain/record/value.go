package record

import (
	"cmp"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"groupstats/domain/core"
)

// Kind tags the runtime type of a Value. Statistics dispatch on the tag.
type Kind string

const (
	KindNull     Kind = "null"
	KindInteger  Kind = "integer"
	KindReal     Kind = "real"
	KindText     Kind = "text"
	KindDate     Kind = "date"
	KindDateTime Kind = "datetime"
)

// Layouts used when a Value is rendered as text
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Value is one typed cell. The zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	t    time.Time
}

// Null returns the absent value
func Null() Value {
	return Value{kind: KindNull}
}

// Int creates an integer value
func Int(i int64) Value {
	return Value{kind: KindInteger, i: i}
}

// Real creates a floating point value
func Real(f float64) Value {
	return Value{kind: KindReal, f: f}
}

// Text creates a text value. Empty text is kept as text, not Null.
func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

// Date creates a calendar date; the clock part of t is dropped
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateTime creates a timestamp value
func DateTime(t time.Time) Value {
	return Value{kind: KindDateTime, t: t.Round(0)}
}

// Of wraps a native Go value. Unsupported types are rendered as text.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case int:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case float32:
		return Real(float64(x))
	case float64:
		return Real(x)
	case string:
		return Text(x)
	case time.Time:
		return DateTime(x)
	default:
		return Text(fmt.Sprintf("%v", x))
	}
}

// Kind returns the value's tag
func (v Value) Kind() Kind {
	if v.kind == "" {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether the value is absent
func (v Value) IsNull() bool {
	return v.Kind() == KindNull
}

// IsNumeric reports whether the value participates in sums
func (v Value) IsNumeric() bool {
	return v.kind == KindInteger || v.kind == KindReal
}

// IsOrderable reports whether the value participates in min/max
func (v Value) IsOrderable() bool {
	return v.IsNumeric() || v.kind == KindDate || v.kind == KindDateTime
}

// AsInt returns the integer payload
func (v Value) AsInt() (int64, bool) {
	if v.kind == KindInteger {
		return v.i, true
	}
	return 0, false
}

// Float64 returns the numeric payload of an integer or real value
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindReal:
		return v.f, true
	}
	return 0, false
}

// AsText returns the text payload
func (v Value) AsText() (string, bool) {
	if v.kind == KindText {
		return v.s, true
	}
	return "", false
}

// AsTime returns the payload of a date or datetime value
func (v Value) AsTime() (time.Time, bool) {
	if v.kind == KindDate || v.kind == KindDateTime {
		return v.t, true
	}
	return time.Time{}, false
}

// Interface returns the native Go value (nil, int64, float64, string or time.Time)
func (v Value) Interface() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindReal:
		return v.f
	case KindText:
		return v.s
	case KindDate, KindDateTime:
		return v.t
	}
	return nil
}

// String renders the value the way it is written to delimited text
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindText:
		return v.s
	case KindDate:
		return v.t.Format(DateLayout)
	case KindDateTime:
		return v.t.Format(DateTimeLayout)
	}
	return ""
}

// MarshalJSON writes the native value; dates and datetimes use their text form
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindDate, KindDateTime:
		return json.Marshal(v.String())
	case KindReal:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return json.Marshal(v.String())
		}
	}
	return json.Marshal(v.Interface())
}

// GoString makes %#v output readable in test failures
func (v Value) GoString() string {
	if v.IsNull() {
		return "record.Null()"
	}
	return fmt.Sprintf("record.%s(%q)", v.Kind(), v.String())
}

// Key is a comparable identity for a Value, usable as a map key.
// Integer 1 and Real 1.0 share a key.
type Key struct {
	kind  Kind
	i     int64
	f     float64
	s     string
	nanos int64
}

const numericKey Kind = "numeric"

// Key returns the value's identity
func (v Value) Key() Key {
	switch v.kind {
	case KindInteger:
		return Key{kind: numericKey, i: v.i}
	case KindReal:
		if math.IsNaN(v.f) {
			return Key{kind: numericKey, s: "nan"}
		}
		if v.f == math.Trunc(v.f) && v.f >= math.MinInt64 && v.f < math.MaxInt64 {
			return Key{kind: numericKey, i: int64(v.f)}
		}
		return Key{kind: numericKey, f: v.f, s: "f"}
	case KindText:
		return Key{kind: KindText, s: v.s}
	case KindDate, KindDateTime:
		return Key{kind: v.kind, nanos: v.t.UnixNano()}
	}
	return Key{kind: KindNull}
}

// AppendBinary appends a canonical encoding of the key to b. Equal keys
// encode to equal bytes.
func (k Key) AppendBinary(b []byte) ([]byte, error) {
	b = append(b, k.kind...)
	b = append(b, 0)
	b = binary.LittleEndian.AppendUint64(b, uint64(k.i))
	b = binary.LittleEndian.AppendUint64(b, math.Float64bits(k.f))
	b = binary.LittleEndian.AppendUint64(b, uint64(k.nanos))
	b = binary.LittleEndian.AppendUint32(b, uint32(len(k.s)))
	return append(b, k.s...), nil
}

// Equal reports value equality
func (v Value) Equal(o Value) bool {
	return v.Key() == o.Key()
}

// Compare orders two values of compatible kinds: numbers with numbers,
// dates with dates, datetimes with datetimes, text with text.
func (v Value) Compare(o Value) (int, error) {
	switch {
	case v.kind == KindInteger && o.kind == KindInteger:
		return cmp.Compare(v.i, o.i), nil
	case v.IsNumeric() && o.IsNumeric():
		a, _ := v.Float64()
		b, _ := o.Float64()
		return cmp.Compare(a, b), nil
	case v.kind == KindText && o.kind == KindText:
		return strings.Compare(v.s, o.s), nil
	case (v.kind == KindDate && o.kind == KindDate) || (v.kind == KindDateTime && o.kind == KindDateTime):
		return v.t.Compare(o.t), nil
	}
	return 0, fmt.Errorf("%w: %s and %s", core.ErrIncomparable, v.Kind(), o.Kind())
}

// Add sums two numeric values. Integer plus integer stays integer unless
// the sum overflows int64, in which case it becomes Real.
func Add(a, b Value) (Value, error) {
	if !a.IsNumeric() {
		return Null(), fmt.Errorf("%w: %s", core.ErrNotNumeric, a.Kind())
	}
	if !b.IsNumeric() {
		return Null(), fmt.Errorf("%w: %s", core.ErrNotNumeric, b.Kind())
	}
	if a.kind == KindInteger && b.kind == KindInteger {
		sum := a.i + b.i
		if (a.i >= 0) == (b.i >= 0) && (sum >= 0) != (a.i >= 0) {
			return Real(float64(a.i) + float64(b.i)), nil
		}
		return Int(sum), nil
	}
	x, _ := a.Float64()
	y, _ := b.Float64()
	return Real(x + y), nil
}
