package ports

import "groupstats/domain/record"

// Coercer converts a trimmed, non-null cell value into its typed form.
// An error aborts the import.
type Coercer interface {
	Coerce(v record.Value) (record.Value, error)
}

// CoercerFunc adapts a function to Coercer
type CoercerFunc func(record.Value) (record.Value, error)

func (f CoercerFunc) Coerce(v record.Value) (record.Value, error) {
	return f(v)
}

// Transform derives a group key component from a whole record
type Transform interface {
	Derive(rec *record.Mapping) (record.Value, error)
}

// TransformFunc adapts a function to Transform
type TransformFunc func(*record.Mapping) (record.Value, error)

func (f TransformFunc) Derive(rec *record.Mapping) (record.Value, error) {
	return f(rec)
}
