package app

import (
	"testing"

	"groupstats/adapters/export"
	"groupstats/domain/core"
	"groupstats/domain/grouping"
	"groupstats/domain/record"
	"groupstats/internal/config"
	"groupstats/internal/errors"
	"groupstats/internal/testkit"
	"groupstats/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// MockExporter is a mock implementation of ports.Exporter
type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) WriteCSV(name string, headers []string, records []record.Record) (string, error) {
	args := m.Called(name, headers, records)
	return args.String(0), args.Error(1)
}

func (m *MockExporter) WriteWorkbook(name string, sheets []ports.Sheet) (string, error) {
	args := m.Called(name, sheets)
	return args.String(0), args.Error(1)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Paths:  config.PathConfig{OutputDir: t.TempDir()},
		Import: config.ImportDefaults{NoneStrings: record.DefaultNoneStrings()},
	}
}

func exampleJob(t *testing.T) *Job {
	t.Helper()
	path := testkit.WriteCSV(t, "example.csv", [][]string{
		{"cat", "x", "y"},
		{"A", "10", "null"},
		{"A", "20", "5"},
		{"B", "30", "15"},
	})
	return &Job{
		Source:    path,
		Coerce:    map[string]string{"x": "int", "y": "int"},
		Groupings: [][]SelectorSpec{{{Column: "cat"}}},
	}
}

func TestAnalysisServiceRun(t *testing.T) {
	svc := NewAnalysisService(testConfig(t), nil, nil)
	result, err := svc.Run(exampleJob(t))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Records)
	require.Len(t, result.Groups, 2)

	a := result.Groups[0]
	assert.Equal(t, "cat: A", a.Label)
	assert.Equal(t, 2, a.Size)
	assert.True(t, a.Key.Equal(grouping.Key{record.Text("A")}))

	y, ok := a.Stats.Column("y")
	require.True(t, ok)
	assert.Equal(t, 2, y.Count)
	assert.Equal(t, 1, y.CountNotNull)
	require.NotNil(t, y.Mean)
	assert.Equal(t, 5.0, *y.Mean)
	assert.Nil(t, y.StdDeviation)
	assert.Empty(t, result.Output)
}

func TestAnalysisServiceImportRowLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Import.RowLimit = 1
	svc := NewAnalysisService(cfg, nil, nil)

	p, err := svc.Import(exampleJob(t))
	require.NoError(t, err)
	assert.Len(t, p.Records, 1, "ROW_LIMIT applies when the job sets none")

	p, err = svc.Import(exampleJob(t), WithRowLimit(0))
	require.NoError(t, err)
	assert.Len(t, p.Records, 3)

	p, err = svc.Import(exampleJob(t), WithRowLimit(2))
	require.NoError(t, err)
	assert.Len(t, p.Records, 2)
}

func TestAnalysisServiceFilterAppliesPerGrouping(t *testing.T) {
	job := exampleJob(t)
	job.Filter = &FilterSpec{Column: "cat", In: []string{"B"}}
	job.Groupings = append(job.Groupings, []SelectorSpec{{Column: "x", Transform: "bucket:100"}})

	result, err := NewAnalysisService(testConfig(t), nil, nil).Run(job)
	require.NoError(t, err)
	require.Len(t, result.Groups, 2)
	assert.Equal(t, "cat: B", result.Groups[0].Label)
	assert.Equal(t, "x: 0", result.Groups[1].Label)
	assert.Equal(t, 1, result.Groups[1].Size)
}

func TestAnalysisServiceExportsCSV(t *testing.T) {
	exporter := new(MockExporter)
	exporter.On("WriteCSV", "report", mock.Anything, mock.Anything).Return("/tmp/report.csv", nil).Once()

	job := exampleJob(t)
	job.Output = OutputSpec{Name: "report", Format: "csv"}

	result, err := NewAnalysisService(testConfig(t), exporter, nil).Run(job)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/report.csv", result.Output)
	exporter.AssertExpectations(t)

	rows := exporter.Calls[0].Arguments.Get(2).([]record.Record)
	// two groups, three columns each
	assert.Len(t, rows, 6)
}

func TestAnalysisServiceExportsWorkbook(t *testing.T) {
	cfg := testConfig(t)
	writer, err := export.NewWriter(cfg.Paths.OutputDir)
	require.NoError(t, err)

	job := exampleJob(t)
	job.Groupings = append(job.Groupings, []SelectorSpec{{Column: "cat"}})
	job.Quantiles = []float64{0.5}
	job.Output = OutputSpec{Name: "report"}

	result, err := NewAnalysisService(cfg, writer, nil).Run(job)
	require.NoError(t, err)
	require.NotEmpty(t, result.Output)

	f, err := excelize.OpenFile(result.Output)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"cat", "cat (2)"}, f.GetSheetList())

	rows, err := f.GetRows("cat")
	require.NoError(t, err)
	assert.Equal(t, SummaryHeaders(job.Quantiles), rows[0])
	assert.Len(t, rows, 7)
}

func TestAnalysisServiceErrors(t *testing.T) {
	svc := NewAnalysisService(testConfig(t), nil, nil)

	job := exampleJob(t)
	job.Groupings = [][]SelectorSpec{{{Column: "missing"}}}
	_, err := svc.Run(job)
	assert.ErrorIs(t, err, core.ErrMissingHeader)
	assert.Equal(t, errors.CodeGroupError, errors.GetCode(err))

	job = exampleJob(t)
	job.Coerce["cat"] = "int"
	_, err = svc.Run(job)
	assert.Equal(t, errors.CodeDecodeError, errors.GetCode(err))
}

func TestSummaryRows(t *testing.T) {
	svc := NewAnalysisService(testConfig(t), nil, nil)
	result, err := svc.Run(exampleJob(t))
	require.NoError(t, err)

	rows := SummaryRows(result.Groups[:1], nil)
	require.Len(t, rows, 3)
	y := rows[2].Values()
	assert.Equal(t, "y", y[3].String())
	assert.True(t, y[7].Equal(record.Int(5)))
	assert.True(t, y[11].IsNull(), "single observation has no deviation")
}
