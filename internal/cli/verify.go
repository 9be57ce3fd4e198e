package cli

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnevik/settlebench/internal/channel"
	"github.com/arnevik/settlebench/internal/dataset"
	"github.com/arnevik/settlebench/internal/engine"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Obligations int
	Events      int
	Duplicates  int
	Orphans     int
	Seed        int64
	Dir         string
	TimeoutSec  float64
}

// NewVerifyCommand creates the verify command: the simple correctness
// harness. It generates one dataset, runs the engine once, and exits
// non-zero if the observed triple does not match the oracle.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify [flags] -- <engine-command> [args...]",
		Short: "Generate one dataset, run the engine, assert the outcome",
		Long: `Generate a reproducible dataset with known match, orphan, and duplicate
counts, feed it to the engine, and assert that the status log converges to
exactly the expected outcome within the timeout.

Example:
  settlebench verify --dir runtime -- ./gradlew -q run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, opts, args)
		},
	}

	cmd.Flags().IntVar(&opts.Obligations, "obligations", 25, "number of obligations")
	cmd.Flags().IntVar(&opts.Events, "events", 0, "total events (default: one primary event per obligation)")
	cmd.Flags().IntVar(&opts.Duplicates, "duplicates", 5, "number of duplicate events")
	cmd.Flags().IntVar(&opts.Orphans, "orphans", 7, "number of unmatched events")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 42, "dataset seed")
	cmd.Flags().StringVar(&opts.Dir, "dir", "runtime", "runtime directory for the channel artifacts")
	cmd.Flags().Float64Var(&opts.TimeoutSec, "timeout", 20, "timeout in seconds")

	return cmd
}

func runVerify(cmd *cobra.Command, opts *VerifyOptions, engineArgv []string) error {
	logger := opts.Logger()
	out := cmd.OutOrStdout()

	events := opts.Events
	if events == 0 {
		events = opts.Obligations
	}
	spec := dataset.Spec{
		Obligations: opts.Obligations,
		Events:      events,
		Duplicates:  opts.Duplicates,
		Orphans:     opts.Orphans,
		Seed:        opts.Seed,
	}

	rng := rand.New(rand.NewSource(spec.Seed))
	ds, err := dataset.Generate(spec, rng)
	if err != nil {
		return WrapExitError(ExitCommandError, "dataset generation failed", err)
	}

	channels := channel.New(opts.Dir)
	if err := channels.WriteDataset(ds); err != nil {
		return WrapExitError(ExitCommandError, "writing channel artifacts failed", err)
	}
	fmt.Fprintf(out, "Wrote %d obligations and %d events into %s\n",
		len(ds.Obligations), len(ds.Events), opts.Dir)

	runner := engine.NewRunner(engine.Command{Argv: engineArgv}, channels.StatusPath)
	runner.Logger = logger

	expected := engine.Counts{
		Matches:    ds.Expected.Matches,
		Unmatches:  ds.Expected.Unmatches,
		Duplicates: ds.Expected.Duplicates,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeout := time.Duration(opts.TimeoutSec * float64(time.Second))
	outcome, err := runner.Run(ctx, expected, timeout)
	if err != nil {
		if engine.IsSpawnError(err) {
			return WrapExitError(ExitCommandError, "engine could not be started", err)
		}
		return WrapExitError(ExitFailure, "engine run failed", err)
	}

	fmt.Fprintf(out, "Expected (%s); observed (%s)\n", expected, outcome.Observed)
	if !outcome.Satisfied {
		return NewExitError(ExitFailure, fmt.Sprintf(
			"counts mismatch after %.1fs: expected (%s), observed (%s)",
			outcome.Elapsed.Seconds(), expected, outcome.Observed))
	}

	fmt.Fprintln(out, "OK: counts match expected.")
	return nil
}
