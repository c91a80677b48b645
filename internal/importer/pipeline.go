// Package importer reads a tabular source into typed records. A run reads
// the header row once, then decodes, filters and caps the remaining rows.
package importer

import (
	stderrors "errors"
	"io"
	"maps"
	"strings"

	"groupstats/adapters/tabular"
	"groupstats/domain/core"
	"groupstats/domain/grouping"
	"groupstats/domain/record"
	"groupstats/internal"
	"groupstats/internal/errors"
	igrouping "groupstats/internal/grouping"
	"groupstats/ports"
)

// Config describes one import. Run copies it, so later changes by the
// caller do not affect a running or finished pipeline.
type Config struct {
	// Source is the path of a .csv or workbook file
	Source    string
	HeaderMap HeaderMap
	// Coercions is keyed by canonical header
	Coercions map[string]ports.Coercer
	// Shape defaults to record.ShapeMapping
	Shape record.Shape
	// NoneStrings defaults to record.DefaultNoneStrings
	NoneStrings record.NoneStrings
	// RowLimit caps the number of kept records; 0 means no cap
	RowLimit int
	Filter   ports.RowFilter
	Logger   *internal.Logger

	// Open replaces tabular.Open
	Open func(path string) (ports.RowSource, error)
}

func (c Config) clone() Config {
	out := c
	out.HeaderMap = c.HeaderMap.clone()
	out.Coercions = maps.Clone(c.Coercions)
	return out
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return errors.ConfigInvalid("import source is required")
	}
	if c.RowLimit < 0 {
		return errors.ConfigInvalidf("row limit must not be negative, got %d", c.RowLimit)
	}
	if _, err := record.ParseShape(string(c.Shape)); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err, "import")
	}
	return nil
}

// Pipeline is the result of one import. Headers and Records belong to the
// caller and may be edited in place before grouping.
type Pipeline struct {
	ID      core.ID
	Source  string
	Kind    string
	Headers []string
	Records []record.Record

	config Config
	engine *igrouping.Engine
	groups *igrouping.SegmentMap
}

// Run imports cfg.Source. The source is closed before Run returns, on
// success and on every error path.
func Run(cfg Config) (*Pipeline, error) {
	cfg = cfg.clone()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Shape == "" {
		cfg.Shape = record.ShapeMapping
	}
	if cfg.NoneStrings.IsZero() {
		cfg.NoneStrings = record.DefaultNoneStrings()
	}
	if cfg.Logger == nil {
		cfg.Logger = internal.Discard
	}
	if cfg.Open == nil {
		cfg.Open = tabular.Open
	}

	p := &Pipeline{
		ID:     core.NewID(),
		Source: cfg.Source,
		config: cfg,
		engine: igrouping.NewEngine(cfg.Logger),
	}
	logger := cfg.Logger.With("run", p.ID.Short())

	src, err := cfg.Open(cfg.Source)
	if err != nil {
		if stderrors.Is(err, core.ErrUnsupportedSource) {
			return nil, errors.UnsupportedSource(err)
		}
		return nil, errors.ImportError("open "+cfg.Source, err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			logger.Warn("failed to close %s: %v", cfg.Source, cerr)
		}
	}()
	p.Kind = src.Kind()

	logger.Info("importing %s (%s)", cfg.Source, p.Kind)

	headerRow, err := src.Next()
	if stderrors.Is(err, io.EOF) {
		return nil, errors.ImportError("read header row of "+cfg.Source, core.ErrEmptySource)
	}
	if err != nil {
		return nil, errors.ImportError("read header row of "+cfg.Source, err)
	}

	raw := make([]string, len(headerRow))
	for i, h := range headerRow {
		raw[i] = h.String()
	}
	p.Headers = ResolveHeaders(raw, cfg.HeaderMap)
	logger.Debug("headers: %s", strings.Join(p.Headers, ", "))
	logger.Debug("none strings: %s", strings.Join(cfg.NoneStrings.Tokens(), ", "))

	decoder := NewDecoder(p.Headers, cfg.Coercions, cfg.Shape, cfg.NoneStrings)

	// the header is line 1
	line := 1
	for cfg.RowLimit == 0 || len(p.Records) < cfg.RowLimit {
		row, err := src.Next()
		if stderrors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, errors.ImportError("read "+cfg.Source, err)
		}

		rec, err := decoder.Decode(row)
		if err != nil {
			return nil, errors.DecodeError(line, err)
		}
		if cfg.Filter != nil && !cfg.Filter(rec) {
			continue
		}
		if len(p.Records) == 0 {
			logger.Debug("first row kinds: %s", describeKinds(p.Headers, rec))
		}
		p.Records = append(p.Records, rec)
	}

	logger.Info("imported %d records from %d rows", len(p.Records), line-1)
	return p, nil
}

func describeKinds(headers []string, rec record.Record) string {
	vals := rec.Values()
	parts := make([]string, len(vals))
	for i, v := range vals {
		name := ""
		if i < len(headers) {
			name = headers[i]
		}
		if m, ok := rec.(*record.Mapping); ok {
			name = m.Keys()[i]
		}
		parts[i] = name + "=" + string(v.Kind())
	}
	return strings.Join(parts, ", ")
}

// Shape returns the record shape of this import
func (p *Pipeline) Shape() record.Shape { return p.config.Shape }

// Head returns up to n leading records
func (p *Pipeline) Head(n int) []record.Record {
	if n < 0 || n > len(p.Records) {
		n = len(p.Records)
	}
	return p.Records[:n]
}

// Group partitions the pipeline's records, or the records passed with
// grouping.WithRecords, and remembers the result
func (p *Pipeline) Group(specs []grouping.Spec, opts ...igrouping.Option) (*igrouping.SegmentMap, error) {
	m, err := p.engine.Group(p.Records, p.Headers, specs, opts...)
	if err != nil {
		return nil, err
	}
	p.SetGroups(m)
	return m, nil
}

// SetGroups stores a grouping result computed elsewhere
func (p *Pipeline) SetGroups(m *igrouping.SegmentMap) { p.groups = m }

// Groups returns the last stored grouping result, if any
func (p *Pipeline) Groups() (*igrouping.SegmentMap, bool) {
	return p.groups, p.groups != nil
}
