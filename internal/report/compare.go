package report

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/arnevik/settlebench/internal/bench"
)

// Compare renders a Markdown comparison of exactly two results, with the
// percentage delta of each headline figure from a to b. A positive delta
// means b is higher.
func Compare(a, b *bench.Result) string {
	ma, mb := a.Mean, b.Mean
	p := message.NewPrinter(language.English)
	var s strings.Builder

	p.Fprintf(&s, "# Benchmark Comparison: %s vs %s\n\n", ma.Scenario, mb.Scenario)
	s.WriteString("## Performance Comparison\n\n")
	p.Fprintf(&s, "- **Throughput**: %.1f vs %.1f ops/sec (%s)\n",
		ma.ThroughputPerSec, mb.ThroughputPerSec, formatDelta(ma.ThroughputPerSec, mb.ThroughputPerSec))
	p.Fprintf(&s, "- **Duration**: %.1f vs %.1f ms (%s)\n",
		ma.DurationMS, mb.DurationMS, formatDelta(ma.DurationMS, mb.DurationMS))
	p.Fprintf(&s, "- **Memory**: %.1f vs %.1f MB (%s)\n",
		ma.MemoryMB, mb.MemoryMB, formatDelta(ma.MemoryMB, mb.MemoryMB))
	p.Fprintf(&s, "- **GC Time**: %.1f vs %.1f ms (%s)\n",
		ma.GCTimeMS, mb.GCTimeMS, formatDelta(ma.GCTimeMS, mb.GCTimeMS))

	return s.String()
}

// DeltaPercent returns the percentage change from a to b: (b/a - 1) * 100.
// NaN when the baseline is zero.
func DeltaPercent(a, b float64) float64 {
	if a == 0 {
		return math.NaN()
	}
	return (b/a - 1) * 100
}

func formatDelta(a, b float64) string {
	d := DeltaPercent(a, b)
	if math.IsNaN(d) {
		return "n/a"
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("%+.1f%%", d)
}
