// Package testkit provides fixtures for package tests: CSV and workbook
// files written into a test's temporary directory, and a seeded generator
// of order sheets.
package testkit

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// utf8BOM is prepended by WriteCSVWithBOM
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes rows (header first) to name under t.TempDir
func WriteCSV(t testing.TB, name string, rows [][]string) string {
	t.Helper()
	return writeCSV(t, name, rows, false)
}

// WriteCSVWithBOM is WriteCSV with a UTF-8 byte order mark in front, the
// way spreadsheet programs export
func WriteCSVWithBOM(t testing.TB, name string, rows [][]string) string {
	t.Helper()
	return writeCSV(t, name, rows, true)
}

func writeCSV(t testing.TB, name string, rows [][]string, bom bool) string {
	t.Helper()

	var buf bytes.Buffer
	if bom {
		buf.Write(utf8BOM)
	}
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write csv fixture: %v", err)
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write csv fixture: %v", err)
	}
	return path
}

// WriteRaw writes content verbatim, for malformed or oddly named inputs
func WriteRaw(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// WriteWorkbook writes rows (header first) to the first sheet of a new
// workbook. A nil cell is left empty.
func WriteWorkbook(t testing.TB, name string, rows [][]any) string {
	t.Helper()
	return WriteWorkbookSheets(t, name, map[string][][]any{"Sheet1": rows}, "Sheet1")
}

// WriteWorkbookSheets writes several sheets and marks active as the active one
func WriteWorkbookSheets(t testing.TB, name string, sheets map[string][][]any, active string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for sheet, rows := range sheets {
		if sheet != "Sheet1" {
			if _, err := f.NewSheet(sheet); err != nil {
				t.Fatalf("create sheet %s: %v", sheet, err)
			}
		}
		for i, row := range rows {
			for j, v := range row {
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(j+1, i+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					t.Fatalf("set %s!%s: %v", sheet, cell, err)
				}
			}
		}
	}
	if _, ok := sheets["Sheet1"]; !ok {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			t.Fatalf("delete default sheet: %v", err)
		}
	}

	idx, err := f.GetSheetIndex(active)
	if err != nil || idx < 0 {
		t.Fatalf("active sheet %s not found", active)
	}
	f.SetActiveSheet(idx)

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook fixture: %v", err)
	}
	return path
}
