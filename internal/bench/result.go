package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// IterationMetrics is one measurement trial. Wall-clock duration is
// measured around the synchronous spawn-and-poll call; throughput is derived
// from it; the remaining figures are engine-reported.
type IterationMetrics struct {
	Scenario    string `json:"scenario"`
	Obligations int    `json:"obligations"`
	Events      int    `json:"events"`

	DurationMS       float64 `json:"duration_ms"`
	ThroughputPerSec float64 `json:"throughput_ops_per_sec"`

	MemoryMB     float64 `json:"memory_mb"`
	GCTimeMS     float64 `json:"gc_time_ms"`
	CPUTimeMS    float64 `json:"cpu_time_ms"`
	PeakEntities int     `json:"peak_entities"`
}

// Result is one completed scenario run: the config, every recorded
// iteration in order (no outlier is ever dropped), their mean, and a
// timestamp. Constructed once after all iterations complete and never
// mutated afterwards.
type Result struct {
	RunID      string             `json:"run_id"`
	Config     Config             `json:"config"`
	Iterations []IterationMetrics `json:"iterations"`
	Mean       IterationMetrics   `json:"mean"`
	Timestamp  time.Time          `json:"timestamp"`
}

// FileName returns the persisted artifact name for this result.
func (r *Result) FileName() string {
	return fmt.Sprintf("benchmark_%s_%d.json", r.Config.Name, r.Timestamp.Unix())
}

// Save persists the result as one JSON document in dir and returns the
// written path.
func (r *Result) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating results directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	path := filepath.Join(dir, r.FileName())
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing result: %w", err)
	}
	return path, nil
}

// LoadResult reads one persisted result document.
func LoadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing result file %s: %w", path, err)
	}
	return &r, nil
}

// LoadResults reads every benchmark_*.json document in dir, sorted by
// obligation count ascending. An empty slice with nil error means the
// directory exists but holds no results.
func LoadResults(dir string) ([]*Result, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "benchmark_*.json"))
	if err != nil {
		return nil, fmt.Errorf("scanning results directory: %w", err)
	}
	results := make([]*Result, 0, len(paths))
	for _, path := range paths {
		r, err := LoadResult(path)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Mean.Obligations < results[j].Mean.Obligations
	})
	return results, nil
}
