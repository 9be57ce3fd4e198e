package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/arnevik/settlebench/internal/channel"
	"github.com/arnevik/settlebench/internal/dataset"
	"github.com/arnevik/settlebench/internal/engine"
	"github.com/arnevik/settlebench/internal/store"
)

// MismatchError indicates a measurement iteration timed out before the
// engine reached the expected outcome. Benchmark runs fail fast on it; the
// expected and observed triples are carried for diagnostics.
type MismatchError struct {
	Scenario  string
	Iteration int
	Expected  engine.Counts
	Observed  engine.Counts
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("scenario %s iteration %d: expected (%s), observed (%s)",
		e.Scenario, e.Iteration, e.Expected, e.Observed)
}

// Runner executes benchmark scenarios. Iterations are strictly sequential:
// the channel artifacts are exclusive engine input, so the previous engine
// process must be dead and the feeds rewritten before the next iteration
// starts.
type Runner struct {
	Channels  *channel.Channels
	Engine    engine.Command
	OutputDir string

	// Catalog, when non-nil, records every persisted result in the run
	// catalog index.
	Catalog *store.Store

	// Clock overrides the wall clock in the engine runner (tests).
	Clock engine.Clock

	// Interval overrides the engine runner's polling interval when
	// positive.
	Interval time.Duration

	Logger *slog.Logger
}

// New returns a Runner with a discard logger.
func New(channels *channel.Channels, engineCmd engine.Command, outputDir string) *Runner {
	return &Runner{
		Channels:  channels,
		Engine:    engineCmd,
		OutputDir: outputDir,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// RunScenario executes one full scenario: warmup iterations discarded, then
// measurement iterations recorded, persisted as one immutable Result.
//
// A spawn failure aborts immediately. A timeout during warmup is logged and
// skipped (warmups exist to stabilize runtime effects, their outcomes are
// irrelevant); a timeout during measurement aborts with a MismatchError.
func (r *Runner) RunScenario(ctx context.Context, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	log := r.Logger.With("scenario", cfg.Name)

	log.Info("scenario starting",
		"obligations", cfg.Obligations,
		"events", cfg.Events,
		"warmup", cfg.WarmupIterations,
		"iterations", cfg.MeasurementIterations,
	)

	for i := 0; i < cfg.WarmupIterations; i++ {
		outcome, err := r.runIteration(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("warmup %d: %w", i+1, err)
		}
		if !outcome.Satisfied {
			log.Warn("warmup iteration timed out, continuing",
				"iteration", i+1, "observed", outcome.Observed.String())
		}
	}

	iterations := make([]IterationMetrics, 0, cfg.MeasurementIterations)
	for i := 0; i < cfg.MeasurementIterations; i++ {
		outcome, err := r.runIteration(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", i+1, err)
		}
		if !outcome.Satisfied {
			return nil, &MismatchError{
				Scenario:  cfg.Name,
				Iteration: i + 1,
				Expected:  expectedCounts(cfg),
				Observed:  outcome.Observed,
			}
		}

		metric := metricFromOutcome(cfg, outcome)
		iterations = append(iterations, metric)
		log.Info("iteration measured",
			"iteration", i+1,
			"duration_ms", metric.DurationMS,
			"throughput", metric.ThroughputPerSec,
		)
	}

	result := &Result{
		RunID:      newRunID(),
		Config:     cfg,
		Iterations: iterations,
		Mean:       meanMetrics(cfg, iterations),
		Timestamp:  time.Now(),
	}

	path, err := result.Save(r.OutputDir)
	if err != nil {
		return nil, err
	}
	log.Info("result saved", "path", path)

	if r.Catalog != nil {
		rec := store.RunRecord{
			ID:             result.RunID,
			Scenario:       cfg.Name,
			Timestamp:      result.Timestamp,
			Path:           path,
			Iterations:     len(iterations),
			MeanThroughput: result.Mean.ThroughputPerSec,
			MeanDurationMS: result.Mean.DurationMS,
			MeanMemoryMB:   result.Mean.MemoryMB,
		}
		if err := r.Catalog.RecordRun(ctx, rec); err != nil {
			return nil, fmt.Errorf("recording run in catalog: %w", err)
		}
	}

	return result, nil
}

// runIteration executes one generate, write, spawn-and-poll cycle. The
// dataset is regenerated from the scenario seed every time, so each
// iteration observes byte-identical input.
func (r *Runner) runIteration(ctx context.Context, cfg Config) (*engine.Outcome, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	ds, err := dataset.Generate(cfg.DatasetSpec(), rng)
	if err != nil {
		return nil, err
	}
	if err := r.Channels.WriteDataset(ds); err != nil {
		return nil, err
	}

	runner := engine.NewRunner(r.Engine, r.Channels.StatusPath)
	runner.Logger = r.Logger
	if r.Clock != nil {
		runner.Clock = r.Clock
	}
	if r.Interval > 0 {
		runner.Interval = r.Interval
	}

	expected := engine.Counts{
		Matches:    ds.Expected.Matches,
		Unmatches:  ds.Expected.Unmatches,
		Duplicates: ds.Expected.Duplicates,
	}
	return runner.Run(ctx, expected, cfg.Timeout())
}

func metricFromOutcome(cfg Config, outcome *engine.Outcome) IterationMetrics {
	durationMS := float64(outcome.Elapsed) / float64(time.Millisecond)
	var throughput float64
	if durationMS > 0 {
		throughput = float64(cfg.Events) / (durationMS / 1000)
	}
	return IterationMetrics{
		Scenario:         cfg.Name,
		Obligations:      cfg.Obligations,
		Events:           cfg.Events,
		DurationMS:       durationMS,
		ThroughputPerSec: throughput,
		MemoryMB:         outcome.Metrics.MemoryMB,
		GCTimeMS:         outcome.Metrics.GCTimeMS,
		CPUTimeMS:        outcome.Metrics.CPUTimeMS,
		PeakEntities:     outcome.Metrics.PeakEntities,
	}
}

func expectedCounts(cfg Config) engine.Counts {
	dups := cfg.Duplicates
	if dups > cfg.Events {
		dups = cfg.Events
	}
	return engine.Counts{
		Matches:    cfg.Obligations,
		Unmatches:  cfg.Orphans,
		Duplicates: dups,
	}
}

func newRunID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}
