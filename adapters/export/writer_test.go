package export

import (
	"encoding/csv"
	"os"
	"strings"
	"testing"
	"time"

	"groupstats/domain/record"
	"groupstats/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixedWriter(t *testing.T) *Writer {
	t.Helper()
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	w.now = func() time.Time { return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC) }
	return w
}

func sampleRecords() []record.Record {
	headers := []string{"cat", "x"}
	return []record.Record{
		record.NewMapping(headers, []record.Value{record.Text("A"), record.Int(10)}),
		record.NewSequence([]record.Value{record.Text("B"), record.Null()}),
		record.NewTuple([]record.Value{record.Text("C"), record.Real(2.5)}),
	}
}

func TestWriteCSV(t *testing.T) {
	w := fixedWriter(t)
	path, err := w.WriteCSV("report", []string{"cat", "x"}, sampleRecords())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "report_2024-03-09.csv"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"cat", "x"},
		{"A", "10"},
		{"B", ""},
		{"C", "2.5"},
	}, rows)
}

func TestWriteWorkbook(t *testing.T) {
	w := fixedWriter(t)
	date := record.Date(time.Date(2020, 12, 16, 0, 0, 0, 0, time.UTC))
	sheets := []ports.Sheet{
		{Title: "summary", Headers: []string{"cat", "x"}, Records: sampleRecords()},
		{Title: "summary", Headers: []string{"when"}, Records: []record.Record{record.NewTuple([]record.Value{date})}},
	}

	path, err := w.WriteWorkbook("report", sheets)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "report_2024-03-09.xlsx"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"summary", "summary (2)"}, f.GetSheetList())
	rows, err := f.GetRows("summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "10"}, rows[1])
	assert.Equal(t, []string{"B"}, rows[2])

	v, err := f.GetCellValue("summary (2)", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2020-12-16", v)
}

func TestWriteWorkbookRequiresSheets(t *testing.T) {
	_, err := fixedWriter(t).WriteWorkbook("empty", nil)
	assert.Error(t, err)
}

func TestSheetTitle(t *testing.T) {
	assert.Equal(t, "a_b_c", SheetTitle("a/b:c", 0))
	assert.Equal(t, "Sheet3", SheetTitle("  ", 2))
	assert.Len(t, []rune(SheetTitle(strings.Repeat("x", 40), 0)), maxSheetTitle)
}
