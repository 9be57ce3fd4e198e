// Package report renders aggregated benchmark results into human-readable
// analysis. It is pure over persisted results: it consumes Result documents
// and never touches the live harness.
package report

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/arnevik/settlebench/internal/bench"
)

// Performance renders the full Markdown performance report: overview table,
// scalability analysis, memory efficiency, GC impact, and recommendations.
// Results are analyzed in obligation-count ascending order regardless of
// input order.
func Performance(results []*bench.Result) (string, error) {
	if len(results) == 0 {
		return "", fmt.Errorf("no results to report on")
	}

	sorted := make([]*bench.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Mean.Obligations < sorted[j].Mean.Obligations
	})

	p := message.NewPrinter(language.English)
	var b strings.Builder

	b.WriteString("# Settlement Matching - Performance Report\n\n")

	b.WriteString("## Performance Overview\n\n")
	b.WriteString("| Scenario | Obligations | Events | Throughput (ops/sec) | Duration (ms) | Memory (MB) |\n")
	b.WriteString("|----------|-------------|--------|----------------------|---------------|-------------|\n")
	for _, r := range sorted {
		m := r.Mean
		p.Fprintf(&b, "| %s | %d | %d | %.1f | %.1f | %.1f |\n",
			m.Scenario, m.Obligations, m.Events, m.ThroughputPerSec, m.DurationMS, m.MemoryMB)
	}

	b.WriteString("\n## Scalability Analysis\n\n")
	if len(sorted) > 1 {
		first := sorted[0].Mean
		last := sorted[len(sorted)-1].Mean
		sizeScale := ratio(float64(last.Obligations), float64(first.Obligations))
		throughputScale := ratio(last.ThroughputPerSec, first.ThroughputPerSec)
		memoryScale := ratio(last.MemoryMB, first.MemoryMB)

		p.Fprintf(&b, "- **Dataset Size Range**: %d to %d obligations (%.1fx increase)\n",
			first.Obligations, last.Obligations, sizeScale)
		p.Fprintf(&b, "- **Throughput Scaling**: %.2fx (ideal would be ~1.0x)\n", throughputScale)
		p.Fprintf(&b, "- **Memory Scaling**: %.2fx (vs %.1fx data increase)\n", memoryScale, sizeScale)
		p.Fprintf(&b, "- **Performance Density**: %.2f ops/sec per obligation\n",
			last.ThroughputPerSec/float64(last.Obligations))
	} else {
		b.WriteString("- Single result; scaling analysis needs at least two scenarios.\n")
	}

	b.WriteString("\n## Memory Efficiency\n\n")
	for _, r := range sorted {
		m := r.Mean
		p.Fprintf(&b, "- **%s**: %.1f KB per obligation\n", m.Scenario, kbPerObligation(m))
	}

	b.WriteString("\n## Garbage Collection Impact\n\n")
	for _, r := range sorted {
		m := r.Mean
		p.Fprintf(&b, "- **%s**: %.1fms GC time (%.1f%% overhead)\n",
			m.Scenario, m.GCTimeMS, gcOverheadPercent(m))
	}

	b.WriteString("\n## Performance Recommendations\n\n")
	best := sorted[0]
	worst := sorted[0]
	efficient := sorted[0]
	for _, r := range sorted[1:] {
		if r.Mean.ThroughputPerSec > best.Mean.ThroughputPerSec {
			best = r
		}
		if r.Mean.ThroughputPerSec < worst.Mean.ThroughputPerSec {
			worst = r
		}
		if kbPerObligation(r.Mean) < kbPerObligation(efficient.Mean) {
			efficient = r
		}
	}
	p.Fprintf(&b, "- **Peak Performance**: %s scenario achieves %.1f ops/sec\n",
		best.Mean.Scenario, best.Mean.ThroughputPerSec)
	p.Fprintf(&b, "- **Performance Floor**: %s scenario at %.1f ops/sec\n",
		worst.Mean.Scenario, worst.Mean.ThroughputPerSec)
	p.Fprintf(&b, "- **Most Memory Efficient**: %s scenario at %.1f KB per obligation\n",
		efficient.Mean.Scenario, kbPerObligation(efficient.Mean))

	return b.String(), nil
}

// kbPerObligation is the memory density of one scenario mean.
func kbPerObligation(m bench.IterationMetrics) float64 {
	if m.Obligations == 0 {
		return 0
	}
	return m.MemoryMB * 1024 / float64(m.Obligations)
}

// gcOverheadPercent is GC time as a percentage of total duration.
func gcOverheadPercent(m bench.IterationMetrics) float64 {
	if m.DurationMS <= 0 {
		return 0
	}
	return m.GCTimeMS / m.DurationMS * 100
}

// ratio guards against a zero denominator; a zero baseline reports 0.
func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
