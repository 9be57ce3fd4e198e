package engine

import (
	"strconv"
	"strings"
)

// MetricsMarker is the literal prefix of the engine's single-line
// instrumentation output, emitted on stdout when benchmark mode is enabled.
const MetricsMarker = "BENCHMARK_METRICS:"

// Metrics holds the engine-reported instrumentation figures.
//
// The zero value means "no metrics line observed". Benchmarks continue with
// zeroed metrics so the absence surfaces as a visible anomaly in reports
// rather than crashing the run.
type Metrics struct {
	MemoryMB     float64
	GCTimeMS     float64
	CPUTimeMS    float64 // reported by the engine as duration_ms
	PeakEntities int
}

// ParseMetrics locates the first metrics marker line in the engine's
// captured output and parses its comma-space separated key=value pairs.
// Unparseable pairs are skipped individually; unknown keys are ignored.
// If no marker line exists, the zero Metrics value is returned.
func ParseMetrics(output string) Metrics {
	var m Metrics
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, MetricsMarker) {
			continue
		}
		parseMetricsLine(strings.TrimSpace(strings.TrimPrefix(line, MetricsMarker)), &m)
		break
	}
	return m
}

func parseMetricsLine(s string, m *Metrics) {
	for _, pair := range strings.Split(s, ", ") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "memory_mb":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				m.MemoryMB = v
			}
		case "gc_time_ms":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				m.GCTimeMS = v
			}
		case "duration_ms":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				m.CPUTimeMS = v
			}
		case "peak_entities":
			if v, err := strconv.Atoi(value); err == nil {
				m.PeakEntities = v
			}
		}
	}
}
