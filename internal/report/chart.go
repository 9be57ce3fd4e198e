package report

import (
	"errors"

	"github.com/arnevik/settlebench/internal/bench"
)

// ErrChartsUnavailable is returned by the default renderer. Chart rendering
// is an optional capability: its absence is a normal runtime configuration
// that callers report as a skipped-with-warning outcome, never a failure.
var ErrChartsUnavailable = errors.New("chart rendering unavailable")

// ChartRenderer renders the multi-panel performance summary (throughput,
// memory, duration, GC overhead versus dataset size) to an image file.
type ChartRenderer interface {
	Render(results []*bench.Result, path string) error
}

// DefaultChartRenderer returns the renderer built into this binary. No
// rendering backend is compiled in, so it always reports the capability as
// unavailable; an injected implementation replaces it where one exists.
func DefaultChartRenderer() ChartRenderer {
	return unavailableRenderer{}
}

type unavailableRenderer struct{}

func (unavailableRenderer) Render([]*bench.Result, string) error {
	return ErrChartsUnavailable
}
