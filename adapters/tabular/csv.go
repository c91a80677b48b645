package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"groupstats/domain/record"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVSource reads a comma-delimited UTF-8 file. A leading byte order mark
// is dropped and rows may have differing field counts. Every cell arrives
// as Text, including empty ones.
type CSVSource struct {
	file   *os.File
	reader *csv.Reader
	closed bool
}

// OpenCSV opens path for row-by-row reading
func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	return newCSVSource(f), nil
}

func newCSVSource(f *os.File) *CSVSource {
	decoded := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	r := csv.NewReader(decoded)
	r.FieldsPerRecord = -1
	return &CSVSource{file: f, reader: r}
}

// Next returns the next row or io.EOF
func (s *CSVSource) Next() ([]record.Value, error) {
	if s.closed {
		return nil, io.EOF
	}
	fields, err := s.reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read CSV row: %w", err)
	}
	row := make([]record.Value, len(fields))
	for i, field := range fields {
		row[i] = record.Text(field)
	}
	return row, nil
}

// Close releases the file handle
func (s *CSVSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

func (s *CSVSource) Kind() string { return KindCSV }
