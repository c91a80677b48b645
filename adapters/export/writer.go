// Package export writes records to delimited text files and workbooks.
// Any record shape is accepted; mapping rows are written values-only in
// their key order.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"groupstats/domain/record"
	"groupstats/internal/errors"
	"groupstats/ports"

	"github.com/xuri/excelize/v2"
)

// maxSheetTitle is Excel's limit on worksheet name length
const maxSheetTitle = 31

// Writer writes files named <name>_<YYYY-MM-DD>.<ext> into one directory
type Writer struct {
	dir string
	now func() time.Time
}

var _ ports.Exporter = (*Writer)(nil)

// NewWriter creates a writer for dir, creating it when missing
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.ExportError(dir, err)
	}
	return &Writer{dir: dir, now: time.Now}, nil
}

// Path returns the file path used for name and ext
func (w *Writer) Path(name, ext string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s.%s", name, w.now().Format("2006-01-02"), ext))
}

// WriteCSV writes a header row followed by one row per record
func (w *Writer) WriteCSV(name string, headers []string, records []record.Record) (string, error) {
	path := w.Path(name, "csv")
	if err := writeCSV(path, headers, records); err != nil {
		return "", errors.ExportError(path, err)
	}
	return path, nil
}

func writeCSV(path string, headers []string, records []record.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, rec := range records {
		vals := rec.Values()
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = v.String()
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Close()
}

// WriteWorkbook writes each sheet to its own worksheet, the first one active
func (w *Writer) WriteWorkbook(name string, sheets []ports.Sheet) (string, error) {
	path := w.Path(name, "xlsx")
	if len(sheets) == 0 {
		return "", errors.ExportError(path, fmt.Errorf("no sheets to write"))
	}
	if err := writeWorkbook(path, sheets); err != nil {
		return "", errors.ExportError(path, err)
	}
	return path, nil
}

func writeWorkbook(path string, sheets []ports.Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool, len(sheets))
	for i, sheet := range sheets {
		title := uniqueTitle(SheetTitle(sheet.Title, i), used)

		if i == 0 {
			if err := f.SetSheetName("Sheet1", title); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(title); err != nil {
			return err
		}

		if err := writeSheet(f, title, sheet); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, title string, sheet ports.Sheet) error {
	for i, h := range sheet.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(title, cell, h); err != nil {
			return err
		}
	}
	for r, rec := range sheet.Records {
		for c, v := range rec.Values() {
			if v.IsNull() {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(title, cell, cellValue(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// cellValue keeps dates readable; excelize would otherwise apply its own
// date-time format to every time.Time
func cellValue(v record.Value) any {
	switch v.Kind() {
	case record.KindDate, record.KindDateTime:
		return v.String()
	}
	return v.Interface()
}

// SheetTitle makes s usable as a worksheet name: forbidden characters are
// replaced and the result is cut to Excel's length limit
func SheetTitle(s string, index int) string {
	title := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
	title = strings.Trim(title, "'")
	if title == "" {
		title = fmt.Sprintf("Sheet%d", index+1)
	}
	if r := []rune(title); len(r) > maxSheetTitle {
		title = string(r[:maxSheetTitle])
	}
	return title
}

func uniqueTitle(title string, used map[string]bool) string {
	candidate := title
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(title)
		if len(r)+len(suffix) > maxSheetTitle {
			r = r[:maxSheetTitle-len(suffix)]
		}
		candidate = string(r) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
