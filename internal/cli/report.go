package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/arnevik/settlebench/internal/bench"
	"github.com/arnevik/settlebench/internal/report"
	"github.com/arnevik/settlebench/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Dir     string
	Output  string
	Charts  bool
	Compare []string
	List    bool
	Catalog string
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Analyze persisted benchmark results",
		Long: `Generate a Markdown performance report from persisted benchmark results,
compare two specific result files, or list the run catalog.

Example:
  settlebench report --dir benchmark_results
  settlebench report --compare run1.json --compare run2.json
  settlebench report --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "benchmark_results", "directory containing result documents")
	cmd.Flags().StringVar(&opts.Output, "output", ".", "output directory for reports")
	cmd.Flags().BoolVar(&opts.Charts, "charts", false, "render the performance chart if a renderer is available")
	cmd.Flags().StringArrayVar(&opts.Compare, "compare", nil, "result file to compare (give exactly twice)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list cataloged runs instead of reporting")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "run catalog database (default: <dir>/runs.db)")

	return cmd
}

func runReport(cmd *cobra.Command, opts *ReportOptions) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if opts.List {
		return listRuns(cmd, opts)
	}

	if len(opts.Compare) > 0 {
		if len(opts.Compare) != 2 {
			return NewExitError(ExitCommandError, "--compare needs exactly two result files")
		}
		return compareResults(cmd, opts, opts.Compare[0], opts.Compare[1])
	}

	// Missing or empty result directories are operator-visible conditions,
	// not internal faults: report and terminate cleanly.
	if _, err := os.Stat(opts.Dir); os.IsNotExist(err) {
		fmt.Fprintf(errOut, "Benchmark results directory not found: %s\n", opts.Dir)
		return nil
	}
	results, err := bench.LoadResults(opts.Dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load results", err)
	}
	if len(results) == 0 {
		fmt.Fprintf(errOut, "No benchmark results found in: %s\n", opts.Dir)
		return nil
	}
	fmt.Fprintf(out, "Found %d benchmark results\n\n", len(results))

	rendered, err := report.Performance(results)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to generate report", err)
	}
	fmt.Fprintln(out, rendered)

	path := filepath.Join(opts.Output, fmt.Sprintf("performance_report_%d.md", time.Now().Unix()))
	if err := writeReportFile(path, rendered); err != nil {
		return WrapExitError(ExitCommandError, "failed to save report", err)
	}
	fmt.Fprintf(out, "Performance report saved to: %s\n", path)

	if opts.Charts {
		chartPath := filepath.Join(opts.Output, "performance_analysis.png")
		if err := report.DefaultChartRenderer().Render(results, chartPath); err != nil {
			if errors.Is(err, report.ErrChartsUnavailable) {
				fmt.Fprintln(errOut, "Chart rendering unavailable - skipping charts")
			} else {
				return WrapExitError(ExitCommandError, "failed to render charts", err)
			}
		} else {
			fmt.Fprintf(out, "Performance charts saved to: %s\n", chartPath)
		}
	}
	return nil
}

func compareResults(cmd *cobra.Command, opts *ReportOptions, pathA, pathB string) error {
	out := cmd.OutOrStdout()

	a, err := bench.LoadResult(pathA)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load first result", err)
	}
	b, err := bench.LoadResult(pathB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load second result", err)
	}

	rendered := report.Compare(a, b)
	fmt.Fprintln(out, rendered)

	path := filepath.Join(opts.Output, fmt.Sprintf("comparison_%d.md", time.Now().Unix()))
	if err := writeReportFile(path, rendered); err != nil {
		return WrapExitError(ExitCommandError, "failed to save comparison", err)
	}
	fmt.Fprintf(out, "Comparison report saved to: %s\n", path)
	return nil
}

func listRuns(cmd *cobra.Command, opts *ReportOptions) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	catalogPath := opts.Catalog
	if catalogPath == "" {
		catalogPath = filepath.Join(opts.Dir, "runs.db")
	}
	if _, err := os.Stat(catalogPath); os.IsNotExist(err) {
		fmt.Fprintf(errOut, "Run catalog not found: %s\n", catalogPath)
		return nil
	}

	catalog, err := store.Open(catalogPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open run catalog", err)
	}
	defer catalog.Close()

	runs, err := catalog.ListRuns(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(errOut, "Run catalog is empty.")
		return nil
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(out, "%-36s %-12s %-25s %-12s %s\n", "Run", "Scenario", "Timestamp", "Throughput", "Result")
	for _, rec := range runs {
		p.Fprintf(out, "%-36s %-12s %-25s %-12.1f %s\n",
			rec.ID, rec.Scenario, rec.Timestamp.Format(time.RFC3339), rec.MeanThroughput, rec.Path)
	}
	return nil
}

func writeReportFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
