package tabular

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"groupstats/domain/record"

	"github.com/xuri/excelize/v2"
)

// WorkbookSource streams the active sheet of an XLSX workbook. Cells keep
// their stored type: numbers become Integer or Real, date-formatted numbers
// and ISO date cells become DateTime, strings and booleans stay Text.
// Empty cells become Null and rows shorter than the header row are padded
// with Null.
type WorkbookSource struct {
	file     *excelize.File
	rows     *excelize.Rows
	sheet    string
	line     int
	width    int
	header   bool
	closed   bool
	date1904 bool

	// style id -> number format is a date
	dateStyles map[int]bool
}

// OpenWorkbook opens path and positions a row iterator on its active sheet
func OpenWorkbook(path string) (*WorkbookSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	src := &WorkbookSource{file: f, rows: rows, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		src.date1904 = *props.Date1904
	}
	return src, nil
}

// Sheet names the sheet being read
func (s *WorkbookSource) Sheet() string { return s.sheet }

// Next returns the next row or io.EOF
func (s *WorkbookSource) Next() ([]record.Value, error) {
	if s.closed || !s.rows.Next() {
		if s.rows != nil && !s.closed {
			if err := s.rows.Error(); err != nil {
				return nil, fmt.Errorf("failed to read sheet %s: %w", s.sheet, err)
			}
		}
		return nil, io.EOF
	}
	s.line++

	cells, err := s.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", s.sheet, err)
	}

	if !s.header {
		s.header = true
		s.width = len(cells)
	}

	n := len(cells)
	if n < s.width {
		n = s.width
	}
	row := make([]record.Value, n)
	for i := range row {
		if i < len(cells) && cells[i] != "" {
			v, err := s.typed(i, cells[i])
			if err != nil {
				return nil, fmt.Errorf("failed to read sheet %s: %w", s.sheet, err)
			}
			row[i] = v
		}
	}
	return row, nil
}

// typed converts the raw content of column col on the current line using
// the cell's stored type and number format
func (s *WorkbookSource) typed(col int, raw string) (record.Value, error) {
	ref, err := excelize.CoordinatesToCellName(col+1, s.line)
	if err != nil {
		return record.Null(), err
	}
	cellType, err := s.file.GetCellType(s.sheet, ref)
	if err != nil {
		return record.Null(), err
	}

	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if s.isDateCell(ref) {
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				if t, err := excelize.ExcelDateToTime(f, s.date1904); err == nil {
					return record.DateTime(t), nil
				}
			}
		}
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return record.Int(i), nil
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return record.Real(f), nil
		}
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return record.DateTime(t), nil
			}
		}
	case excelize.CellTypeBool:
		if raw == "1" {
			return record.Text("TRUE"), nil
		}
		return record.Text("FALSE"), nil
	}
	return record.Text(raw), nil
}

// isDateCell reports whether the number format applied to ref displays a
// date or time. Results are cached per style id.
func (s *WorkbookSource) isDateCell(ref string) bool {
	id, err := s.file.GetCellStyle(s.sheet, ref)
	if err != nil || id == 0 {
		return false
	}
	if isDate, ok := s.dateStyles[id]; ok {
		return isDate
	}

	isDate := false
	if style, err := s.file.GetStyle(id); err == nil {
		switch {
		case style.CustomNumFmt != nil:
			isDate = isDateFormat(*style.CustomNumFmt)
		default:
			isDate = isBuiltInDateFormat(style.NumFmt)
		}
	}
	s.dateStyles[id] = isDate
	return isDate
}

func isBuiltInDateFormat(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 27 && id <= 36) ||
		(id >= 45 && id <= 47) || (id >= 50 && id <= 58)
}

// isDateFormat looks for date or time tokens outside quoted literals,
// escapes and bracketed colors or conditions
func isDateFormat(format string) bool {
	inQuote, inBracket := false, false
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			inBracket = c != ']'
		case c == '"':
			inQuote = true
		case c == '[':
			// elapsed time like [h]:mm is still a time
			if strings.HasPrefix(strings.ToLower(format[i:]), "[h]") ||
				strings.HasPrefix(strings.ToLower(format[i:]), "[m]") ||
				strings.HasPrefix(strings.ToLower(format[i:]), "[s]") {
				return true
			}
			inBracket = true
		case c == '\\' || c == '_' || c == '*':
			i++
		default:
			switch c | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}

// Close releases the iterator and the workbook
func (s *WorkbookSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var firstErr error
	if err := s.rows.Close(); err != nil {
		firstErr = err
	}
	if err := s.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (s *WorkbookSource) Kind() string { return KindXLSX }
