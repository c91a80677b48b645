// Package coercer holds the built-in coercion strategies applied by the
// import pipeline. Every coercer receives a trimmed, non-null value and
// either returns its typed form or an error that aborts the import.
package coercer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"groupstats/domain/record"
	"groupstats/ports"

	"github.com/xuri/excelize/v2"
)

// Integer parses whole numbers. Reals are truncated toward zero.
type Integer struct {
	// StripCommas removes thousands separators first ("1,250" -> 1250)
	StripCommas bool
}

func (c Integer) Coerce(v record.Value) (record.Value, error) {
	switch v.Kind() {
	case record.KindInteger:
		return v, nil
	case record.KindReal:
		f, _ := v.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return record.Null(), fmt.Errorf("cannot convert %v to integer", f)
		}
		return record.Int(int64(f)), nil
	case record.KindText:
		s, _ := v.AsText()
		if c.StripCommas {
			s = strings.ReplaceAll(s, ",", "")
		}
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return record.Null(), fmt.Errorf("cannot parse %q as integer: %w", s, err)
		}
		return record.Int(i), nil
	}
	return record.Null(), fmt.Errorf("cannot convert %s to integer", v.Kind())
}

// Float parses real numbers
type Float struct {
	// StripPercent removes a percent sign first ("12.5%" -> 12.5)
	StripPercent bool
}

func (c Float) Coerce(v record.Value) (record.Value, error) {
	switch v.Kind() {
	case record.KindReal:
		return v, nil
	case record.KindInteger:
		f, _ := v.Float64()
		return record.Real(f), nil
	case record.KindText:
		s, _ := v.AsText()
		if c.StripPercent {
			s = strings.ReplaceAll(s, "%", "")
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return record.Null(), fmt.Errorf("cannot parse %q as float: %w", s, err)
		}
		return record.Real(f), nil
	}
	return record.Null(), fmt.Errorf("cannot convert %s to float", v.Kind())
}

// Currency parses money amounts written with symbols, thousands separators,
// European decimal commas or accounting parentheses for negatives.
type Currency struct{}

var currencySymbols = []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"}

func (Currency) Coerce(v record.Value) (record.Value, error) {
	if v.IsNumeric() {
		return Float{}.Coerce(v)
	}
	s, ok := v.AsText()
	if !ok {
		return record.Null(), fmt.Errorf("cannot convert %s to currency", v.Kind())
	}
	f, ok := parseAmount(s)
	if !ok {
		return record.Null(), fmt.Errorf("cannot parse %q as currency amount", s)
	}
	return record.Real(f), nil
}

// parseAmount handles parentheses for negatives, currency symbols and
// European/French decimal commas
func parseAmount(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range currencySymbols {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) <= 2 && isDigits(afterComma) {
			// 1.234,56 or 1 234,56
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		commaIdx := strings.LastIndex(cleanVal, ",")
		if len(cleanVal)-commaIdx-1 == 3 {
			// 1,250 is a thousands separator
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DefaultDateTimeLayouts are tried in order by DateTime
var DefaultDateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

// DateTime parses timestamps. Values that are already timestamps pass
// through; numbers and numeric text are read as Excel serial dates, which
// is how workbook dates without a date format arrive.
type DateTime struct {
	// Layouts overrides DefaultDateTimeLayouts
	Layouts []string
	// Location applies to layouts without a zone; UTC when nil
	Location *time.Location
}

func (c DateTime) Coerce(v record.Value) (record.Value, error) {
	t, err := c.parse(v)
	if err != nil {
		return record.Null(), err
	}
	return record.DateTime(t), nil
}

func (c DateTime) parse(v record.Value) (time.Time, error) {
	switch v.Kind() {
	case record.KindDateTime, record.KindDate:
		t, _ := v.AsTime()
		return t, nil
	case record.KindInteger, record.KindReal:
		f, _ := v.Float64()
		return fromExcelSerial(f)
	case record.KindText:
		s, _ := v.AsText()
		return c.parseText(strings.TrimSpace(s))
	}
	return time.Time{}, fmt.Errorf("cannot convert %s to datetime", v.Kind())
}

func (c DateTime) parseText(s string) (time.Time, error) {
	layouts := c.Layouts
	if len(layouts) == 0 {
		layouts = DefaultDateTimeLayouts
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromExcelSerial(f)
	}

	return time.Time{}, fmt.Errorf("cannot parse %q as datetime", s)
}

func fromExcelSerial(f float64) (time.Time, error) {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, fmt.Errorf("%v is not an Excel serial date", f)
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot convert serial %v to datetime: %w", f, err)
	}
	return t, nil
}

// Date parses like DateTime and keeps only the calendar date
type Date struct {
	DateTime
}

func (c Date) Coerce(v record.Value) (record.Value, error) {
	t, err := c.parse(v)
	if err != nil {
		return record.Null(), err
	}
	return record.Date(t), nil
}

// Text renders any value as text
type Text struct{}

func (Text) Coerce(v record.Value) (record.Value, error) {
	if v.Kind() == record.KindText {
		return v, nil
	}
	return record.Text(v.String()), nil
}

// Named returns a built-in coercer by the name used in job files
func Named(name string) (ports.Coercer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "int", "integer":
		return Integer{}, nil
	case "int_string", "integer_string":
		return Integer{StripCommas: true}, nil
	case "float", "real":
		return Float{}, nil
	case "percentage", "percent":
		return Float{StripPercent: true}, nil
	case "currency", "money":
		return Currency{}, nil
	case "datetime", "timestamp":
		return DateTime{}, nil
	case "date":
		return Date{}, nil
	case "text", "string", "str":
		return Text{}, nil
	}
	return nil, fmt.Errorf("unknown coercer %q (known: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the names accepted by Named
func Names() []string {
	return []string{"int", "int_string", "float", "percentage", "currency", "datetime", "date", "text"}
}
