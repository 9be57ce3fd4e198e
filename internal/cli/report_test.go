package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnevik/settlebench/internal/bench"
	"github.com/arnevik/settlebench/internal/store"
)

func runReportCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewReportCommand(&RootOptions{})
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func savedResult(t *testing.T, dir, scenario string, obligations int, throughput float64, ts time.Time) string {
	t.Helper()
	r := &bench.Result{
		RunID:  "run-" + scenario,
		Config: bench.Config{Name: scenario, Obligations: obligations, Events: obligations * 2},
		Iterations: []bench.IterationMetrics{
			{Scenario: scenario, Obligations: obligations, Events: obligations * 2, DurationMS: 100, ThroughputPerSec: throughput, MemoryMB: 10, GCTimeMS: 2},
		},
		Mean:      bench.IterationMetrics{Scenario: scenario, Obligations: obligations, Events: obligations * 2, DurationMS: 100, ThroughputPerSec: throughput, MemoryMB: 10, GCTimeMS: 2},
		Timestamp: ts,
	}
	path, err := r.Save(dir)
	require.NoError(t, err)
	return path
}

func TestReport_MissingDirectoryIsClean(t *testing.T) {
	_, stderr, err := runReportCommand(t, "--dir", filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Contains(t, stderr, "Benchmark results directory not found")
}

func TestReport_EmptyDirectoryIsClean(t *testing.T) {
	_, stderr, err := runReportCommand(t, "--dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stderr, "No benchmark results found")
}

func TestReport_GeneratesPerformanceReport(t *testing.T) {
	dir := t.TempDir()
	output := t.TempDir()
	savedResult(t, dir, "micro", 10, 500, time.Unix(1700000000, 0))
	savedResult(t, dir, "medium", 1000, 400, time.Unix(1700000100, 0))

	stdout, _, err := runReportCommand(t, "--dir", dir, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Found 2 benchmark results")
	assert.Contains(t, stdout, "# Settlement Matching - Performance Report")
	assert.Contains(t, stdout, "Performance report saved to:")

	saved, err := filepath.Glob(filepath.Join(output, "performance_report_*.md"))
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestReport_ChartsUnavailableIsSkipped(t *testing.T) {
	dir := t.TempDir()
	savedResult(t, dir, "micro", 10, 500, time.Unix(1700000000, 0))

	_, stderr, err := runReportCommand(t, "--dir", dir, "--output", t.TempDir(), "--charts")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Chart rendering unavailable - skipping charts")
}

func TestReport_Compare(t *testing.T) {
	dir := t.TempDir()
	output := t.TempDir()
	pathA := savedResult(t, dir, "baseline", 100, 100, time.Unix(1700000000, 0))
	pathB := savedResult(t, dir, "candidate", 100, 120, time.Unix(1700000100, 0))

	stdout, _, err := runReportCommand(t,
		"--compare", pathA, "--compare", pathB, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Benchmark Comparison: baseline vs candidate")
	assert.Contains(t, stdout, "(+20.0%)")
	assert.Contains(t, stdout, "Comparison report saved to:")

	saved, err := filepath.Glob(filepath.Join(output, "comparison_*.md"))
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestReport_CompareNeedsExactlyTwoFiles(t *testing.T) {
	_, _, err := runReportCommand(t, "--compare", "one.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "exactly two")
}

func TestReport_ListMissingCatalogIsClean(t *testing.T) {
	_, stderr, err := runReportCommand(t, "--list", "--dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stderr, "Run catalog not found")
}

func TestReport_ListRuns(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "runs.db")

	catalog, err := store.Open(catalogPath)
	require.NoError(t, err)
	require.NoError(t, catalog.RecordRun(context.Background(), store.RunRecord{
		ID:             "0190e1a2-aaaa-7bbb-8ccc-000000000001",
		Scenario:       "small",
		Timestamp:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Path:           "benchmark_results/benchmark_small_1.json",
		Iterations:     5,
		MeanThroughput: 2500.5,
		MeanDurationMS: 100,
		MeanMemoryMB:   12,
	}))
	require.NoError(t, catalog.Close())

	stdout, _, err := runReportCommand(t, "--list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "0190e1a2-aaaa-7bbb-8ccc-000000000001")
	assert.Contains(t, stdout, "small")
}
