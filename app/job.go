package app

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"groupstats/adapters/coercer"
	"groupstats/domain/grouping"
	"groupstats/domain/record"
	"groupstats/internal/errors"
	"groupstats/internal/importer"
	"groupstats/ports"

	"gopkg.in/yaml.v3"
)

// Job describes one analysis, usually loaded from a YAML file.
//
// Example (YAML):
//
//	source: orders.csv
//	coerce:
//	  quantity: int
//	  order_date: date
//	headers:
//	  by_name:
//	    Order Date: order_date
//	filter:
//	  column: country
//	  in: [US, CA]
//	groupings:
//	  - [country]
//	  - [country, {column: order_date, transform: quarter}]
//	quantiles: [0.5]
//	output:
//	  name: orders_report
//	  format: xlsx
type Job struct {
	Source      string            `yaml:"source"`
	Shape       string            `yaml:"shape,omitempty"`
	RowLimit    int               `yaml:"row_limit,omitempty"`
	NoneStrings []string          `yaml:"none_strings,omitempty"`
	Headers     HeaderSpec        `yaml:"headers,omitempty"`
	Coerce      map[string]string `yaml:"coerce,omitempty"`
	Filter      *FilterSpec       `yaml:"filter,omitempty"`
	Groupings   [][]SelectorSpec  `yaml:"groupings"`
	Quantiles   []float64         `yaml:"quantiles,omitempty"`
	Output      OutputSpec        `yaml:"output,omitempty"`
}

// HeaderSpec renames raw headers by position or by name
type HeaderSpec struct {
	ByIndex map[int]string    `yaml:"by_index,omitempty"`
	ByName  map[string]string `yaml:"by_name,omitempty"`
}

// FilterSpec keeps rows whose column renders to one of the listed values.
// It applies when grouping, so row_limit counts every imported row.
type FilterSpec struct {
	Column string   `yaml:"column"`
	In     []string `yaml:"in"`
}

// OutputSpec names the report file; an empty name skips the export
type OutputSpec struct {
	Name   string `yaml:"name,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// SelectorSpec is either a bare column name or {column, transform}
type SelectorSpec struct {
	Column    string `yaml:"column"`
	Transform string `yaml:"transform,omitempty"`
}

// UnmarshalYAML accepts a scalar column name or a mapping
func (s *SelectorSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.Column = node.Value
		s.Transform = ""
		return nil
	}
	type plain SelectorSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = SelectorSpec(p)
	return nil
}

// LoadJob reads and validates a job file
func LoadJob(path string) (*Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigInvalidf("read job file: %v", err)
	}
	return ParseJob(b)
}

// ParseJob decodes and validates a YAML job
func ParseJob(b []byte) (*Job, error) {
	var job Job
	if err := yaml.Unmarshal(b, &job); err != nil {
		return nil, errors.ConfigInvalidf("parse job YAML: %v", err)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Validate checks names that are resolved later, so a bad job fails
// before its source is opened
func (j *Job) Validate() error {
	if strings.TrimSpace(j.Source) == "" {
		return errors.ConfigInvalid("job source is required")
	}
	if j.RowLimit < 0 {
		return errors.ConfigInvalidf("row_limit must not be negative, got %d", j.RowLimit)
	}
	if _, err := record.ParseShape(j.Shape); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err, "job")
	}
	if _, err := j.Coercions(); err != nil {
		return err
	}
	if _, err := j.Specs(); err != nil {
		return err
	}
	if j.Filter != nil && j.Filter.Column == "" {
		return errors.ConfigInvalid("filter column is required")
	}
	switch strings.ToLower(j.Output.Format) {
	case "", "csv", "xlsx":
	default:
		return errors.ConfigInvalidf("output format must be csv or xlsx, got %q", j.Output.Format)
	}
	for _, p := range j.Quantiles {
		if p < 0 || p > 1 {
			return errors.ConfigInvalidf("quantile %v outside [0, 1]", p)
		}
	}
	return nil
}

// HeaderMap converts the header section for the importer
func (j *Job) HeaderMap() importer.HeaderMap {
	return importer.HeaderMap{ByIndex: j.Headers.ByIndex, ByName: j.Headers.ByName}
}

// Coercions resolves coercer names
func (j *Job) Coercions() (map[string]ports.Coercer, error) {
	out := make(map[string]ports.Coercer, len(j.Coerce))
	for header, name := range j.Coerce {
		c, err := coercer.Named(name)
		if err != nil {
			return nil, errors.ConfigInvalidf("coerce %s: %v", header, err)
		}
		out[header] = c
	}
	return out, nil
}

// Specs resolves the grouping section
func (j *Job) Specs() ([]grouping.Spec, error) {
	specs := make([]grouping.Spec, 0, len(j.Groupings))
	for _, items := range j.Groupings {
		spec := make(grouping.Spec, 0, len(items))
		for _, item := range items {
			if item.Column == "" {
				return nil, errors.ConfigInvalidf("grouping %v: selector without column", items)
			}
			if item.Transform == "" {
				spec = append(spec, grouping.By(item.Column))
				continue
			}
			fn, err := NamedTransform(item.Transform)
			if err != nil {
				return nil, errors.ConfigInvalidf("grouping on %s: %v", item.Column, err)
			}
			spec = append(spec, grouping.ByValue(item.Column, fn))
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// RowFilter builds the grouping filter, nil when none is configured.
// Positional records are read through headers.
func (j *Job) RowFilter(headers []string) ports.RowFilter {
	if j.Filter == nil {
		return nil
	}
	column := j.Filter.Column
	allowed := make(map[string]bool, len(j.Filter.In))
	for _, v := range j.Filter.In {
		allowed[v] = true
	}
	return func(r record.Record) bool {
		v, ok := record.View(r, headers).Get(column)
		return ok && allowed[v.String()]
	}
}

// NamedTransform returns a value transform by the name used in job files:
// year, quarter, month, day or bucket:<width>. Null stays Null.
func NamedTransform(name string) (func(record.Value) (record.Value, error), error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if width, ok := strings.CutPrefix(name, "bucket:"); ok {
		w, err := strconv.ParseFloat(width, 64)
		if err != nil || w <= 0 || math.IsInf(w, 0) {
			return nil, fmt.Errorf("bucket width must be a positive number, got %q", width)
		}
		return bucket(w), nil
	}

	var layout func(record.Value) record.Value
	switch name {
	case "year":
		layout = func(v record.Value) record.Value {
			t, _ := v.AsTime()
			return record.Int(int64(t.Year()))
		}
	case "quarter":
		layout = func(v record.Value) record.Value {
			t, _ := v.AsTime()
			return record.Text(fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1))
		}
	case "month":
		layout = func(v record.Value) record.Value {
			t, _ := v.AsTime()
			return record.Text(t.Format("2006-01"))
		}
	case "day":
		layout = func(v record.Value) record.Value {
			t, _ := v.AsTime()
			return record.Date(t)
		}
	default:
		return nil, fmt.Errorf("unknown transform %q", name)
	}

	return func(v record.Value) (record.Value, error) {
		if v.IsNull() {
			return v, nil
		}
		if _, ok := v.AsTime(); !ok {
			return record.Null(), fmt.Errorf("%s needs a date or datetime, got %s %q", name, v.Kind(), v.String())
		}
		return layout(v), nil
	}, nil
}

// bucket maps a number to the lower bound of its width-sized interval
func bucket(width float64) func(record.Value) (record.Value, error) {
	return func(v record.Value) (record.Value, error) {
		if v.IsNull() {
			return v, nil
		}
		f, ok := v.Float64()
		if !ok {
			return record.Null(), fmt.Errorf("bucket needs a number, got %s %q", v.Kind(), v.String())
		}
		if i, ok := v.AsInt(); ok && width == math.Trunc(width) && width < math.MaxInt64 {
			w := int64(width)
			q := i / w
			if i%w != 0 && i < 0 {
				q--
			}
			return record.Int(q * w), nil
		}
		return record.Real(math.Floor(f/width) * width), nil
	}
}
