package ports

import (
	"groupstats/domain/record"
)

// RowSource yields raw rows lazily from a tabular file. The first row is
// the header row. Next returns io.EOF once the source is exhausted.
// Close releases the underlying handle and is safe to call more than once.
type RowSource interface {
	Next() ([]record.Value, error)
	Close() error
	// Kind names the source format ("csv" or "xlsx")
	Kind() string
}

// RowFilter decides whether a decoded record is kept
type RowFilter func(record.Record) bool
