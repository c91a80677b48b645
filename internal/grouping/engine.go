// Package grouping partitions records into groups keyed by the values that
// a spec's selectors derive from each record.
package grouping

import (
	"groupstats/domain/grouping"
	"groupstats/domain/record"
	"groupstats/internal"
	"groupstats/internal/errors"
	"groupstats/ports"
)

// Option configures a single Group call
type Option func(*options)

type options struct {
	filter     ports.RowFilter
	records    []record.Record
	headers    []string
	useRecords bool
}

// WithFilter keeps only records for which f returns true. The filter runs
// again for every spec.
func WithFilter(f ports.RowFilter) Option {
	return func(o *options) { o.filter = f }
}

// WithRecords replaces the records and headers passed to Group. Pipelines
// use it to group something other than their own records.
func WithRecords(records []record.Record, headers []string) Option {
	return func(o *options) {
		o.records = records
		o.headers = headers
		o.useRecords = true
	}
}

// Engine groups records
type Engine struct {
	logger *internal.Logger
}

// NewEngine creates a grouping engine. A nil logger discards output.
func NewEngine(logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.Discard
	}
	return &Engine{logger: logger}
}

// Group partitions records once per spec. Positional records are read
// through headers. All specs are validated before any record is read, and
// any selector failure aborts the whole call.
func (e *Engine) Group(records []record.Record, headers []string, specs []grouping.Spec, opts ...Option) (*SegmentMap, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.useRecords {
		records, headers = o.records, o.headers
	}

	sigs := make([]grouping.Signature, len(specs))
	for i, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, errors.GroupError(spec.Signature(), err)
		}
		sigs[i] = spec.Signature()
	}

	views := make([]*record.Mapping, len(records))
	for i, rec := range records {
		views[i] = record.View(rec, headers)
	}

	result := &SegmentMap{entries: make([]Entry, 0, len(specs))}
	for i, spec := range specs {
		segs, err := e.groupOne(records, views, spec, sigs[i], o.filter)
		if err != nil {
			return nil, errors.GroupError(sigs[i], err)
		}
		e.logger.Debug("grouped %d of %d records by %s into %d groups", segs.Size(), len(records), sigs[i], segs.Len())
		result.entries = append(result.entries, Entry{Signature: sigs[i], Segments: segs})
	}
	return result, nil
}

func (e *Engine) groupOne(records []record.Record, views []*record.Mapping, spec grouping.Spec, sig grouping.Signature, filter ports.RowFilter) (*Segments, error) {
	segs := newSegments(sig)
	for i, rec := range records {
		if filter != nil && !filter(rec) {
			continue
		}
		key := make(grouping.Key, len(spec))
		for j, sel := range spec {
			v, err := sel.Select(views[i])
			if err != nil {
				return nil, err
			}
			key[j] = v
		}
		segs.add(key, rec)
	}
	return segs, nil
}

// GroupFlat is Group returning only the segments, in spec order
func (e *Engine) GroupFlat(records []record.Record, headers []string, specs []grouping.Spec, opts ...Option) ([]*Segments, error) {
	m, err := e.Group(records, headers, specs, opts...)
	if err != nil {
		return nil, err
	}
	return m.Flatten(), nil
}

// StringifyGroup renders a group key against its signature as "a: 1, b: x"
func StringifyGroup(sig grouping.Signature, key grouping.Key) string {
	return grouping.Describe(sig, key)
}
