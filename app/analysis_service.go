package app

import (
	"strconv"
	"strings"
	"time"

	"groupstats/domain/core"
	"groupstats/domain/grouping"
	"groupstats/domain/record"
	"groupstats/domain/stats"
	"groupstats/internal"
	"groupstats/internal/aggregation"
	"groupstats/internal/config"
	"groupstats/internal/errors"
	igrouping "groupstats/internal/grouping"
	"groupstats/internal/importer"
	"groupstats/ports"
)

// AnalysisService runs jobs end to end: import, group, compute statistics
// for every group and optionally export a summary report
type AnalysisService struct {
	config   *config.Config
	exporter ports.Exporter
	logger   *internal.Logger
}

// GroupReport holds the statistics of one group
type GroupReport struct {
	// Grouping is the index of the spec that produced the group
	Grouping  int
	Signature grouping.Signature
	Key       grouping.Key
	Label     string
	Size      int
	Stats     *stats.GroupStatistics
}

// AnalysisResult contains the complete output of a job run
type AnalysisResult struct {
	RunID     core.ID
	Source    string
	Headers   []string
	Records   int
	Groups    []GroupReport
	Output    string
	RuntimeMs int64
}

// NewAnalysisService creates an analysis service. A nil exporter disables
// report output; a nil logger discards log lines.
func NewAnalysisService(cfg *config.Config, exporter ports.Exporter, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.Discard
	}
	return &AnalysisService{config: cfg, exporter: exporter, logger: logger}
}

// Import runs only the import step of job
func (s *AnalysisService) Import(job *Job, opts ...ImportOption) (*importer.Pipeline, error) {
	coercions, err := job.Coercions()
	if err != nil {
		return nil, err
	}

	none := s.config.Import.NoneStrings
	if len(job.NoneStrings) > 0 {
		none = record.NewNoneStrings(job.NoneStrings...)
	}
	rowLimit := s.config.Import.RowLimit
	if job.RowLimit > 0 {
		rowLimit = job.RowLimit
	}

	cfg := importer.Config{
		Source:      s.config.ResolveSource(job.Source),
		HeaderMap:   job.HeaderMap(),
		Coercions:   coercions,
		Shape:       record.Shape(job.Shape),
		NoneStrings: none,
		RowLimit:    rowLimit,
		Logger:      s.logger,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return importer.Run(cfg)
}

// ImportOption adjusts the importer configuration of a single Import
type ImportOption func(*importer.Config)

// WithRowLimit caps the import at n rows regardless of ROW_LIMIT and the
// job's row_limit. 0 imports every row.
func WithRowLimit(n int) ImportOption {
	return func(cfg *importer.Config) {
		cfg.RowLimit = n
	}
}

// Run executes job
func (s *AnalysisService) Run(job *Job) (*AnalysisResult, error) {
	startTime := time.Now()

	if err := job.Validate(); err != nil {
		return nil, err
	}
	specs, err := job.Specs()
	if err != nil {
		return nil, err
	}

	p, err := s.Import(job)
	if err != nil {
		return nil, err
	}

	var opts []igrouping.Option
	if filter := job.RowFilter(p.Headers); filter != nil {
		opts = append(opts, igrouping.WithFilter(filter))
	}
	segments, err := p.Group(specs, opts...)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		RunID:   p.ID,
		Source:  p.Source,
		Headers: p.Headers,
		Records: len(p.Records),
	}

	var aggOpts []aggregation.Option
	aggOpts = append(aggOpts, aggregation.WithLogger(s.logger))
	if len(job.Quantiles) > 0 {
		aggOpts = append(aggOpts, aggregation.WithQuantiles(job.Quantiles...))
	}

	entries := segments.Entries()
	for i, entry := range entries {
		var groupErr error
		entry.Segments.Each(func(key grouping.Key, members []record.Record) {
			if groupErr != nil {
				return
			}
			gs, err := aggregation.Compute(members, p.Headers, aggOpts...)
			if err != nil {
				groupErr = errors.Wrapf(err, "group %s", igrouping.StringifyGroup(entry.Signature, key))
				return
			}
			result.Groups = append(result.Groups, GroupReport{
				Grouping:  i,
				Signature: entry.Signature,
				Key:       key,
				Label:     igrouping.StringifyGroup(entry.Signature, key),
				Size:      len(members),
				Stats:     gs,
			})
		})
		if groupErr != nil {
			return nil, groupErr
		}
		s.logger.Info("%s: %d groups", entry.Signature, entry.Segments.Len())
	}

	if s.exporter != nil && job.Output.Name != "" {
		path, err := s.export(job, result, len(entries))
		if err != nil {
			return nil, err
		}
		result.Output = path
		s.logger.Info("report written to %s", path)
	}

	result.RuntimeMs = time.Since(startTime).Milliseconds()
	return result, nil
}

func (s *AnalysisService) export(job *Job, result *AnalysisResult, groupings int) (string, error) {
	headers := SummaryHeaders(job.Quantiles)

	if strings.ToLower(job.Output.Format) == "csv" {
		return s.exporter.WriteCSV(job.Output.Name, headers, SummaryRows(result.Groups, job.Quantiles))
	}

	// one sheet per grouping, in request order
	byGrouping := make([][]GroupReport, groupings)
	for _, g := range result.Groups {
		byGrouping[g.Grouping] = append(byGrouping[g.Grouping], g)
	}
	specs, _ := job.Specs()
	sheets := make([]ports.Sheet, 0, groupings)
	for i, groups := range byGrouping {
		sheets = append(sheets, ports.Sheet{
			Title:   strings.Join(specs[i].Signature(), "-"),
			Headers: headers,
			Records: SummaryRows(groups, job.Quantiles),
		})
	}
	if len(sheets) == 0 {
		sheets = append(sheets, ports.Sheet{Title: "summary", Headers: headers})
	}
	return s.exporter.WriteWorkbook(job.Output.Name, sheets)
}

// SummaryHeaders lists the columns of the summary table
func SummaryHeaders(quantiles []float64) []string {
	headers := []string{"grouping", "group", "size", "column", "count", "count_not_null", "distinct", "sum", "min", "max", "mean", "std_deviation"}
	for _, p := range quantiles {
		headers = append(headers, "q"+strconv.FormatFloat(p, 'f', -1, 64))
	}
	return headers
}

// SummaryRows flattens reports into one row per group and column
func SummaryRows(groups []GroupReport, quantiles []float64) []record.Record {
	var rows []record.Record
	for _, g := range groups {
		g.Stats.Each(func(cs *stats.ColumnStatistics) {
			row := []record.Value{
				record.Text(g.Signature.String()),
				record.Text(g.Label),
				record.Int(int64(g.Size)),
				record.Text(cs.Column),
				record.Int(int64(cs.Count)),
				record.Int(int64(cs.CountNotNull)),
				record.Int(int64(len(cs.CountUnique))),
				cs.Sum,
				cs.Min,
				cs.Max,
				optional(cs.Mean),
				optional(cs.StdDeviation),
			}
			for _, p := range quantiles {
				if q, ok := cs.Quantile(p); ok {
					row = append(row, record.Real(q))
				} else {
					row = append(row, record.Null())
				}
			}
			rows = append(rows, record.NewTuple(row))
		})
	}
	return rows
}

func optional(f *float64) record.Value {
	if f == nil {
		return record.Null()
	}
	return record.Real(*f)
}
