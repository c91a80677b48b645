package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Source errors
	ErrUnsupportedSource = errors.New("unsupported source type")
	ErrEmptySource       = errors.New("source has no header row")

	// Decode errors
	ErrCoercionFailed = errors.New("value coercion failed")

	// Grouping errors
	ErrInvalidSelector = errors.New("invalid group selector")
	ErrMissingHeader   = errors.New("header not present in record")

	// Aggregation errors
	ErrIncomparable     = errors.New("values are not comparable")
	ErrNotNumeric       = errors.New("value is not numeric")
	ErrInsufficientData = errors.New("insufficient data for statistics")
)

// Error constructors with context
func NewUnsupportedSourceError(path string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
}

func NewCoercionError(header string, value string, err error) error {
	return fmt.Errorf("%w for header %q (value %q): %v", ErrCoercionFailed, header, value, err)
}

func NewInvalidSelectorError(selector any) error {
	return fmt.Errorf("%w: %#v (want a column name or a (name, transform) pair)", ErrInvalidSelector, selector)
}

func NewMissingHeaderError(header string) error {
	return fmt.Errorf("%w: %q", ErrMissingHeader, header)
}
