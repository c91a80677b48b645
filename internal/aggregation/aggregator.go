// Package aggregation computes per-column descriptive statistics for one
// group of records. Statistics are built in three passes: tallies and sums,
// then means and shares, then spread for columns that have a mean.
package aggregation

import (
	"fmt"
	"sort"

	"groupstats/domain/core"
	"groupstats/domain/record"
	"groupstats/domain/stats"
	"groupstats/internal"
	"groupstats/internal/errors"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Option configures a Compute call
type Option func(*options)

type options struct {
	quantiles []float64
	logger    *internal.Logger
}

// WithQuantiles requests empirical quantiles (each p in [0, 1]) of the
// numeric values of every column
func WithQuantiles(ps ...float64) Option {
	return func(o *options) { o.quantiles = append(o.quantiles, ps...) }
}

// WithLogger sets the logger; output is discarded otherwise
func WithLogger(l *internal.Logger) Option {
	return func(o *options) { o.logger = l }
}

// accumulator carries pass 1 state that does not belong in the result
type accumulator struct {
	uniqueIdx map[record.Key]int
}

// Compute returns statistics for the columns of the first record. Positional
// records are read through headers, and a record lacking one of those
// columns contributes Null to it.
func Compute(records []record.Record, headers []string, opts ...Option) (*stats.GroupStatistics, error) {
	o := &options{logger: internal.Discard}
	for _, opt := range opts {
		opt(o)
	}
	for _, p := range o.quantiles {
		if p < 0 || p > 1 {
			return nil, errors.ConfigInvalidf("quantile %v outside [0, 1]", p)
		}
	}

	if len(records) == 0 {
		return nil, errors.WithCode(errors.CodeAggregateError, core.ErrInsufficientData, "aggregate")
	}

	views := make([]*record.Mapping, len(records))
	for i, rec := range records {
		views[i] = record.View(rec, headers)
	}
	columns := views[0].Keys()
	result := stats.NewGroupStatistics(columns)

	if err := firstPass(result, views); err != nil {
		return nil, err
	}
	secondPass(result)
	if err := thirdPass(result, views, o.quantiles); err != nil {
		return nil, err
	}

	o.logger.Trace("computed statistics for %d columns over %d records", len(columns), len(records))
	return result, nil
}

func valueAt(view *record.Mapping, column string) record.Value {
	v, ok := view.Get(column)
	if !ok {
		return record.Null()
	}
	return v
}

// firstPass counts values and accumulates sum, min and max
func firstPass(result *stats.GroupStatistics, views []*record.Mapping) error {
	accs := make(map[string]*accumulator, len(result.Columns))
	for _, col := range result.Columns {
		accs[col] = &accumulator{uniqueIdx: make(map[record.Key]int)}
	}

	for _, view := range views {
		for _, col := range result.Columns {
			cs := result.ByName[col]
			acc := accs[col]
			v := valueAt(view, col)

			cs.Count++
			k := v.Key()
			if i, ok := acc.uniqueIdx[k]; ok {
				cs.CountUnique[i].Count++
			} else {
				acc.uniqueIdx[k] = len(cs.CountUnique)
				cs.CountUnique = append(cs.CountUnique, stats.ValueCount{Value: v, Count: 1})
			}

			if v.IsNull() {
				continue
			}
			cs.CountNotNull++

			if v.IsNumeric() {
				if cs.Sum.IsNull() {
					cs.Sum = v
				} else {
					sum, err := record.Add(cs.Sum, v)
					if err != nil {
						return errors.AggregateError(col, err)
					}
					cs.Sum = sum
				}
			}

			if v.IsOrderable() {
				if err := extend(cs, v); err != nil {
					return errors.AggregateError(col, err)
				}
			}
		}
	}
	return nil
}

func extend(cs *stats.ColumnStatistics, v record.Value) error {
	if cs.Min.IsNull() {
		cs.Min, cs.Max = v, v
		return nil
	}
	c, err := v.Compare(cs.Min)
	if err != nil {
		return err
	}
	if c < 0 {
		cs.Min = v
	}
	c, err = v.Compare(cs.Max)
	if err != nil {
		return err
	}
	if c > 0 {
		cs.Max = v
	}
	return nil
}

// secondPass derives mean and the per-value shares
func secondPass(result *stats.GroupStatistics) {
	result.Each(func(cs *stats.ColumnStatistics) {
		if cs.HasSum() && cs.CountNotNull > 0 {
			sum, _ := cs.Sum.Float64()
			mean := sum / float64(cs.CountNotNull)
			cs.Mean = &mean
		}

		cs.PctUnique = make([]stats.ValuePct, len(cs.CountUnique))
		for i, vc := range cs.CountUnique {
			cs.PctUnique[i] = stats.ValuePct{
				Value: vc.Value,
				Pct:   100 * float64(vc.Count) / float64(cs.Count),
			}
		}
	})
}

// thirdPass computes the sample standard deviation of columns with a mean,
// and quantiles when requested
func thirdPass(result *stats.GroupStatistics, views []*record.Mapping, quantiles []float64) error {
	for _, col := range result.Columns {
		cs := result.ByName[col]
		if cs.Mean == nil && len(quantiles) == 0 {
			continue
		}

		data := make([]float64, 0, cs.CountNotNull)
		numeric := true
		for _, view := range views {
			v := valueAt(view, col)
			if v.IsNull() {
				continue
			}
			f, ok := v.Float64()
			if !ok {
				numeric = false
				if cs.Mean != nil {
					return errors.AggregateError(col, fmt.Errorf("%w: %s value %q", core.ErrNotNumeric, v.Kind(), v.String()))
				}
				continue
			}
			data = append(data, f)
		}

		if cs.Mean != nil && len(data) >= 2 {
			sd, err := mstats.StandardDeviationSample(data)
			if err != nil {
				return errors.AggregateError(col, err)
			}
			cs.StdDeviation = &sd
		}

		if len(quantiles) > 0 && numeric && len(data) > 0 {
			sort.Float64s(data)
			cs.Quantiles = make([]stats.Quantile, len(quantiles))
			for i, p := range quantiles {
				cs.Quantiles[i] = stats.Quantile{P: p, Value: stat.Quantile(p, stat.Empirical, data, nil)}
			}
		}
	}
	return nil
}
