package grouping

import (
	"testing"

	"groupstats/domain/core"
	"groupstats/domain/grouping"
	"groupstats/domain/record"
	"groupstats/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var headers = []string{"x", "y"}

func rows(t *testing.T) []record.Record {
	t.Helper()
	return []record.Record{
		record.NewMapping(headers, []record.Value{record.Text("A"), record.Int(5)}),
		record.NewMapping(headers, []record.Value{record.Text("B"), record.Int(3)}),
		record.NewMapping(headers, []record.Value{record.Text("A"), record.Null()}),
	}
}

func spec(t *testing.T, items ...any) grouping.Spec {
	t.Helper()
	s, err := grouping.ParseSpec(items...)
	require.NoError(t, err)
	return s
}

func TestGroupKeepsFirstSeenOrder(t *testing.T) {
	recs := rows(t)
	m, err := NewEngine(nil).Group(recs, headers, []grouping.Spec{spec(t, "x")})
	require.NoError(t, err)

	segs, ok := m.Lookup(grouping.Signature{"x"})
	require.True(t, ok)
	require.Equal(t, 2, segs.Len())
	assert.Equal(t, []grouping.Key{{record.Text("A")}, {record.Text("B")}}, segs.Keys())

	a, ok := segs.Get(grouping.Key{record.Text("A")})
	require.True(t, ok)
	assert.Equal(t, []record.Record{recs[0], recs[2]}, a)
	assert.Equal(t, len(recs), segs.Size())
}

func TestGroupPartitionsEveryRecordOnce(t *testing.T) {
	recs := rows(t)
	segsList, err := NewEngine(nil).GroupFlat(recs, headers, []grouping.Spec{spec(t, "x", "y")})
	require.NoError(t, err)
	require.Len(t, segsList, 1)

	seen := 0
	segsList[0].Each(func(key grouping.Key, group []record.Record) {
		seen += len(group)
		for _, rec := range group {
			m := record.View(rec, headers)
			x, _ := m.Get("x")
			assert.True(t, key[0].Equal(x))
		}
	})
	assert.Equal(t, len(recs), seen)
	assert.Equal(t, 3, segsList[0].Len())
}

func TestGroupPositionalRecords(t *testing.T) {
	recs := []record.Record{
		record.NewTuple([]record.Value{record.Text("A"), record.Int(1)}),
		record.NewSequence([]record.Value{record.Text("A"), record.Int(2)}),
	}
	m, err := NewEngine(nil).Group(recs, headers, []grouping.Spec{spec(t, "x")})
	require.NoError(t, err)
	segs, _ := m.Lookup(grouping.Signature{"x"})
	assert.Equal(t, 1, segs.Len())
}

func TestGroupDuplicateSignaturesKeptApart(t *testing.T) {
	first := spec(t, "x")
	second := grouping.Spec{grouping.ByValue("x", func(v record.Value) (record.Value, error) {
		return record.Text("all"), nil
	})}

	m, err := NewEngine(nil).Group(rows(t), headers, []grouping.Spec{first, second})
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())

	entries := m.Entries()
	assert.Equal(t, entries[0].Signature, entries[1].Signature)
	assert.Equal(t, 2, entries[0].Segments.Len())
	assert.Equal(t, 1, entries[1].Segments.Len())
}

func TestGroupMissingHeader(t *testing.T) {
	_, err := NewEngine(nil).Group(rows(t), headers, []grouping.Spec{spec(t, "nope")})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMissingHeader)
	assert.Equal(t, errors.CodeGroupError, errors.GetCode(err))
}

func TestGroupInvalidSpecFailsBeforeReading(t *testing.T) {
	calls := 0
	counting := grouping.Spec{grouping.ByValue("x", func(v record.Value) (record.Value, error) {
		calls++
		return v, nil
	})}
	bad := grouping.Spec{{Column: ""}}

	_, err := NewEngine(nil).Group(rows(t), headers, []grouping.Spec{counting, bad})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidSelector)
	assert.Zero(t, calls)
}

func TestGroupFilterRunsPerSpec(t *testing.T) {
	calls := 0
	onlyA := func(r record.Record) bool {
		calls++
		x, _ := record.View(r, headers).Get("x")
		return x.Equal(record.Text("A"))
	}

	recs := rows(t)
	m, err := NewEngine(nil).Group(recs, headers, []grouping.Spec{spec(t, "x"), spec(t, "y")}, WithFilter(onlyA))
	require.NoError(t, err)
	assert.Equal(t, 2*len(recs), calls)

	for _, segs := range m.Flatten() {
		assert.Equal(t, 2, segs.Size())
	}
}

func TestGroupWithRecordsOverrides(t *testing.T) {
	other := []record.Record{
		record.NewTuple([]record.Value{record.Text("Q")}),
	}
	m, err := NewEngine(nil).Group(rows(t), headers, []grouping.Spec{spec(t, "k")}, WithRecords(other, []string{"k"}))
	require.NoError(t, err)
	segs, _ := m.Lookup(grouping.Signature{"k"})
	assert.Equal(t, []grouping.Key{{record.Text("Q")}}, segs.Keys())
}

func TestGroupEmptyInput(t *testing.T) {
	m, err := NewEngine(nil).Group(nil, headers, []grouping.Spec{spec(t, "x")})
	require.NoError(t, err)
	segs, ok := m.Lookup(grouping.Signature{"x"})
	require.True(t, ok)
	assert.Zero(t, segs.Len())
}

func TestStringifyGroup(t *testing.T) {
	assert.Equal(t, "x: A, y: 5", StringifyGroup(grouping.Signature{"x", "y"}, grouping.Key{record.Text("A"), record.Int(5)}))
}
