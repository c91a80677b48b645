// Package stats holds the per-column descriptive statistics computed for
// one group of records.
package stats

import (
	"groupstats/domain/record"
)

// ValueCount is one entry of a column's distinct-value tally
type ValueCount struct {
	Value record.Value `json:"value"`
	Count int          `json:"count"`
}

// ValuePct is one entry of a column's distinct-value share, in percent
type ValuePct struct {
	Value record.Value `json:"value"`
	Pct   float64      `json:"pct"`
}

// ColumnStatistics summarizes one column within one group.
// INVARIANTS:
// - CountNotNull <= Count
// - the counts in CountUnique add up to Count (Null is a distinct value)
// - Mean is set only when Sum is set and CountNotNull > 0
// - StdDeviation is set only when Mean is set and CountNotNull >= 2
type ColumnStatistics struct {
	Column       string `json:"column"`
	Count        int    `json:"count"`
	CountNotNull int    `json:"count_not_null"`

	// CountUnique lists distinct values in first-seen order
	CountUnique []ValueCount `json:"count_unique"`

	// Sum is Integer while every input is Integer, otherwise Real.
	// Null when the column has no numeric values.
	Sum record.Value `json:"sum"`
	Min record.Value `json:"min"`
	Max record.Value `json:"max"`

	Mean *float64 `json:"mean,omitempty"`

	// PctUnique shares are relative to Count, nulls included
	PctUnique []ValuePct `json:"pct_unique"`

	// StdDeviation is the sample standard deviation (N-1)
	StdDeviation *float64 `json:"std_deviation,omitempty"`

	// Quantiles is filled only when requested, in request order
	Quantiles []Quantile `json:"quantiles,omitempty"`
}

// Quantile is the empirical quantile of a column's numeric values at P
type Quantile struct {
	P     float64 `json:"p"`
	Value float64 `json:"value"`
}

// UniqueCount returns the tally for v
func (c *ColumnStatistics) UniqueCount(v record.Value) int {
	for _, vc := range c.CountUnique {
		if vc.Value.Equal(v) {
			return vc.Count
		}
	}
	return 0
}

// UniquePct returns the percentage share of v
func (c *ColumnStatistics) UniquePct(v record.Value) float64 {
	for _, vp := range c.PctUnique {
		if vp.Value.Equal(v) {
			return vp.Pct
		}
	}
	return 0
}

// Quantile returns the quantile at p, if computed
func (c *ColumnStatistics) Quantile(p float64) (float64, bool) {
	for _, q := range c.Quantiles {
		if q.P == p {
			return q.Value, true
		}
	}
	return 0, false
}

// HasSum reports whether a sum was accumulated
func (c *ColumnStatistics) HasSum() bool { return !c.Sum.IsNull() }

// GroupStatistics maps column name to its statistics, keeping column order
type GroupStatistics struct {
	Columns []string                     `json:"columns"`
	ByName  map[string]*ColumnStatistics `json:"by_name"`
}

// NewGroupStatistics creates an empty result for the given columns
func NewGroupStatistics(columns []string) *GroupStatistics {
	g := &GroupStatistics{
		Columns: append([]string(nil), columns...),
		ByName:  make(map[string]*ColumnStatistics, len(columns)),
	}
	for _, col := range columns {
		g.ByName[col] = &ColumnStatistics{Column: col}
	}
	return g
}

// Column returns the statistics of one column
func (g *GroupStatistics) Column(name string) (*ColumnStatistics, bool) {
	c, ok := g.ByName[name]
	return c, ok
}

// Each visits columns in order
func (g *GroupStatistics) Each(fn func(*ColumnStatistics)) {
	for _, col := range g.Columns {
		fn(g.ByName[col])
	}
}
