package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"groupstats/adapters/coercer"
	"groupstats/app"
	"groupstats/domain/record"
	"groupstats/internal/config"
	"groupstats/internal/container"
	"groupstats/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; the environment wins over it
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "groupstats",
		Short:         "Import tabular files, group records and compute per-group statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newStatsCmd(),
		newInspectCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		if errors.IsAppError(err) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", errors.GetCode(err), err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// setup loads configuration and wires the application
func setup(outputDir string) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg, container.WithOutputDir(outputDir))
}

func newRunCmd() *cobra.Command {
	var outputDir string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run [job.yaml]",
		Short: "Run an analysis job file",
		Long: `Run an analysis described by a YAML job file: import the source, group it
by every listed grouping, compute statistics for each group and write a
summary report when output.name is set.

Relative sources are resolved against DATA_FILE_PATH; reports are written to
DATA_FILE_OUTPUT_PATH unless --output-dir is given.

Example: groupstats run jobs/orders.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := app.LoadJob(args[0])
			if err != nil {
				return err
			}
			c, err := setup(outputDir)
			if err != nil {
				return err
			}
			result, err := c.Analysis.Run(job)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result, job.Quantiles, asJSON)
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for reports (overrides DATA_FILE_OUTPUT_PATH)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full statistics as JSON")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var by []string
	var coerce []string
	var quantiles []float64
	var output, format string
	var rowLimit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Group a file by columns and print per-group statistics",
		Long: `Ad-hoc form of "run" without a job file. Each --by flag adds one grouping;
separate columns with commas for a composite key, and add a transform after
a colon (year, quarter, month, day, bucket:<width>).

Example: groupstats stats orders.csv --by country --by country,order_date:quarter --coerce order_date=date --coerce quantity=int`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job := &app.Job{
				Source:    args[0],
				RowLimit:  rowLimit,
				Coerce:    map[string]string{},
				Quantiles: quantiles,
				Output:    app.OutputSpec{Name: output, Format: format},
			}
			for _, c := range coerce {
				header, name, ok := strings.Cut(c, "=")
				if !ok {
					return errors.ConfigInvalidf("--coerce wants header=name, got %q", c)
				}
				job.Coerce[header] = name
			}
			for _, b := range by {
				var sels []app.SelectorSpec
				for _, part := range strings.Split(b, ",") {
					column, transform, _ := strings.Cut(strings.TrimSpace(part), ":")
					sels = append(sels, app.SelectorSpec{Column: column, Transform: transform})
				}
				job.Groupings = append(job.Groupings, sels)
			}

			c, err := setup("")
			if err != nil {
				return err
			}
			result, err := c.Analysis.Run(job)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result, quantiles, asJSON)
		},
	}

	cmd.Flags().StringArrayVar(&by, "by", nil, "Grouping columns, comma separated (repeatable)")
	cmd.Flags().StringArrayVar(&coerce, "coerce", nil, "Coercion as header=name (repeatable); names: "+strings.Join(coercer.Names(), ", "))
	cmd.Flags().Float64SliceVar(&quantiles, "quantile", nil, "Quantiles to compute, in [0, 1]")
	cmd.Flags().StringVar(&output, "output", "", "Report name; empty skips the report")
	cmd.Flags().StringVar(&format, "format", "xlsx", "Report format: csv|xlsx")
	cmd.Flags().IntVar(&rowLimit, "limit", 0, "Maximum rows to import (0 = ROW_LIMIT, or all when unset)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full statistics as JSON")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var rows int
	var shape string

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print the headers and leading rows of a file",
		Long: `Import the first rows of a file without coercion and print them with the
kind of every value.

Example: groupstats inspect orders.xlsx --rows 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup("")
			if err != nil {
				return err
			}
			p, err := c.Analysis.Import(&app.Job{Source: args[0], Shape: shape}, app.WithRowLimit(rows))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s), run %s\n", p.Source, p.Kind, p.ID.Short())
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, strings.Join(p.Headers, "\t"))
			for _, rec := range p.Head(-1) {
				vals := rec.Values()
				cells := make([]string, len(vals))
				for i, v := range vals {
					cells[i] = describe(v)
				}
				fmt.Fprintln(tw, strings.Join(cells, "\t"))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 10, "Number of rows to print (0 = all, ROW_LIMIT is ignored)")
	cmd.Flags().StringVar(&shape, "shape", "mapping", "Record shape: mapping|sequence|tuple")
	return cmd
}

func describe(v record.Value) string {
	if v.IsNull() {
		return "<null>"
	}
	return fmt.Sprintf("%s (%s)", v.String(), v.Kind())
}

func printResult(w io.Writer, result *app.AnalysisResult, quantiles []float64, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(w, "%s: %d records, %d groups in %dms\n", result.Source, result.Records, len(result.Groups), result.RuntimeMs)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(app.SummaryHeaders(quantiles), "\t"))
	for _, row := range app.SummaryRows(result.Groups, quantiles) {
		vals := row.Values()
		cells := make([]string, len(vals))
		for i, v := range vals {
			cells[i] = v.String()
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if result.Output != "" {
		fmt.Fprintf(w, "report: %s\n", result.Output)
	}
	return nil
}
