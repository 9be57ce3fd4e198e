package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/arnevik/settlebench/internal/bench"
	"github.com/arnevik/settlebench/internal/channel"
	"github.com/arnevik/settlebench/internal/engine"
	"github.com/arnevik/settlebench/internal/store"
)

// BenchOptions holds flags for the bench command.
type BenchOptions struct {
	*RootOptions
	Scenario     string
	ScenarioFile string
	Dir          string
	Output       string
	Catalog      string
	Iterations   int
	Size         int
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bench [flags] -- <engine-command> [args...]",
		Short: "Run benchmark scenarios against the engine",
		Long: `Run one or all benchmark scenarios: warmup iterations are executed and
discarded, then measurement iterations are recorded and persisted as one
JSON result document per scenario.

Example:
  settlebench bench --scenario all --dir runtime -- ./gradlew -q run
  settlebench bench --scenario throughput --size 2000 -- ./engine`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "all", "scenario name, or \"all\"")
	cmd.Flags().StringVar(&opts.ScenarioFile, "scenarios", "", "YAML scenario suite (default: built-in scenarios)")
	cmd.Flags().StringVar(&opts.Dir, "dir", "runtime", "runtime directory for the channel artifacts")
	cmd.Flags().StringVar(&opts.Output, "output", "benchmark_results", "output directory for result documents")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "run catalog database (default: <output>/runs.db, \"off\" disables)")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", 0, "override measurement iterations for every scenario")
	cmd.Flags().IntVar(&opts.Size, "size", 0, "override obligation count for the throughput scenario")

	return cmd
}

func runBench(cmd *cobra.Command, opts *BenchOptions, engineArgv []string) error {
	logger := opts.Logger()
	out := cmd.OutOrStdout()

	suite, err := loadScenarios(opts.ScenarioFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}
	applyOverrides(suite, opts)

	var selected []bench.Config
	if opts.Scenario == "all" {
		selected = suite.Scenarios
	} else {
		cfg, ok := suite.ByName(opts.Scenario)
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf(
				"unknown scenario %q (available: %s)", opts.Scenario, strings.Join(suite.Names(), ", ")))
		}
		selected = []bench.Config{cfg}
	}

	runner := bench.New(channel.New(opts.Dir), engine.Command{Argv: engineArgv}, opts.Output)
	runner.Logger = logger

	if catalogPath := resolveCatalogPath(opts); catalogPath != "" {
		catalog, err := store.Open(catalogPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open run catalog", err)
		}
		defer catalog.Close()
		runner.Catalog = catalog
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := message.NewPrinter(language.English)
	results := make([]*bench.Result, 0, len(selected))
	for _, cfg := range selected {
		result, err := runner.RunScenario(ctx, cfg)
		if err != nil {
			var mismatch *bench.MismatchError
			if errors.As(err, &mismatch) {
				return WrapExitError(ExitFailure, "benchmark failed", err)
			}
			if engine.IsSpawnError(err) {
				return WrapExitError(ExitCommandError, "engine could not be started", err)
			}
			return WrapExitError(ExitFailure, "benchmark aborted", err)
		}
		results = append(results, result)
		printScenarioSummary(p, out, result)
	}

	if len(results) > 1 {
		printComparativeSummary(p, out, results)
	}
	return nil
}

func loadScenarios(path string) (*bench.Suite, error) {
	if path == "" {
		return &bench.Suite{Scenarios: bench.DefaultScenarios()}, nil
	}
	return bench.LoadSuite(path)
}

// applyOverrides applies the --iterations and --size flags.
// --size rescales the throughput scenario keeping its 10:1 event ratio.
func applyOverrides(suite *bench.Suite, opts *BenchOptions) {
	for i := range suite.Scenarios {
		if opts.Iterations > 0 {
			suite.Scenarios[i].MeasurementIterations = opts.Iterations
		}
		if opts.Size > 0 && suite.Scenarios[i].Name == "throughput" {
			suite.Scenarios[i].Obligations = opts.Size
			suite.Scenarios[i].Events = opts.Size * 10
		}
	}
}

func resolveCatalogPath(opts *BenchOptions) string {
	switch opts.Catalog {
	case "off":
		return ""
	case "":
		return filepath.Join(opts.Output, "runs.db")
	}
	return opts.Catalog
}

func printScenarioSummary(p *message.Printer, out io.Writer, result *bench.Result) {
	m := result.Mean
	p.Fprintf(out, "\nScenario summary: %s\n", result.Config.Name)
	p.Fprintf(out, "%s\n", strings.Repeat("=", 60))
	p.Fprintf(out, "Obligations:     %d\n", m.Obligations)
	p.Fprintf(out, "Status Events:   %d\n", m.Events)
	p.Fprintf(out, "Duration:        %.1f ms\n", m.DurationMS)
	p.Fprintf(out, "Throughput:      %.1f events/sec\n", m.ThroughputPerSec)
	p.Fprintf(out, "Memory Used:     %.1f MB\n", m.MemoryMB)
	p.Fprintf(out, "GC Time:         %.1f ms\n", m.GCTimeMS)
	p.Fprintf(out, "Peak Entities:   %d\n", m.PeakEntities)

	if v := result.Variance(); len(result.Iterations) > 1 {
		p.Fprintf(out, "Throughput StdDev: %.1f ops/sec\n", v.ThroughputStddev)
		p.Fprintf(out, "Duration StdDev:   %.1f ms\n", v.DurationStddevMS)
	}
}

func printComparativeSummary(p *message.Printer, out io.Writer, results []*bench.Result) {
	p.Fprintf(out, "\nComparative results\n")
	p.Fprintf(out, "%s\n", strings.Repeat("=", 80))
	p.Fprintf(out, "%-15s %-12s %-8s %-15s %-10s\n", "Scenario", "Obligations", "Events", "Throughput", "Duration")
	p.Fprintf(out, "%s\n", strings.Repeat("-", 80))
	for _, r := range results {
		m := r.Mean
		p.Fprintf(out, "%-15s %-12d %-8d %-15.1f %-10.1f\n",
			m.Scenario, m.Obligations, m.Events, m.ThroughputPerSec, m.DurationMS)
	}
}
