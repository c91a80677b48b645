package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"groupstats/app"
	"groupstats/domain/grouping"
	"groupstats/domain/record"
	"groupstats/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *app.AnalysisResult {
	gs := stats.NewGroupStatistics([]string{"x"})
	cs, _ := gs.Column("x")
	cs.Count, cs.CountNotNull = 1, 1
	cs.Sum = record.Int(4)
	cs.CountUnique = []stats.ValueCount{{Value: record.Int(4), Count: 1}}

	return &app.AnalysisResult{
		Source:  "in.csv",
		Records: 1,
		Groups: []app.GroupReport{{
			Signature: grouping.Signature{"cat"},
			Key:       grouping.Key{record.Text("A")},
			Label:     "cat: A",
			Size:      1,
			Stats:     gs,
		}},
	}
}

func TestPrintResultTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, sampleResult(), nil, false))
	out := buf.String()
	assert.Contains(t, out, "in.csv: 1 records, 1 groups")
	assert.Contains(t, out, "cat: A")
	assert.Contains(t, out, "count_not_null")
}

func TestPrintResultJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, sampleResult(), nil, true))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "in.csv", decoded["Source"])
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "<null>", describe(record.Null()))
	assert.Equal(t, "3 (integer)", describe(record.Int(3)))
}

func TestCommandFlags(t *testing.T) {
	coerce := newStatsCmd().Flags().Lookup("coerce")
	require.NotNil(t, coerce)
	assert.Contains(t, coerce.Usage, "currency")

	rows := newInspectCmd().Flags().Lookup("rows")
	require.NotNil(t, rows)
	assert.Equal(t, "10", rows.DefValue)
	assert.Contains(t, rows.Usage, "ROW_LIMIT is ignored")
}
