package bench

import "math"

// meanMetrics computes the arithmetic mean of every recorded field.
// PeakEntities is truncated to an integer mean.
func meanMetrics(cfg Config, iterations []IterationMetrics) IterationMetrics {
	m := IterationMetrics{
		Scenario:    cfg.Name,
		Obligations: cfg.Obligations,
		Events:      cfg.Events,
	}
	if len(iterations) == 0 {
		return m
	}

	var peak float64
	for _, it := range iterations {
		m.DurationMS += it.DurationMS
		m.ThroughputPerSec += it.ThroughputPerSec
		m.MemoryMB += it.MemoryMB
		m.GCTimeMS += it.GCTimeMS
		m.CPUTimeMS += it.CPUTimeMS
		peak += float64(it.PeakEntities)
	}
	n := float64(len(iterations))
	m.DurationMS /= n
	m.ThroughputPerSec /= n
	m.MemoryMB /= n
	m.GCTimeMS /= n
	m.CPUTimeMS /= n
	m.PeakEntities = int(peak / n)
	return m
}

// Variance is the spread of the two headline figures across iterations.
// Zero-valued when fewer than two iterations were recorded.
type Variance struct {
	ThroughputStddev float64
	DurationStddevMS float64
}

// Variance computes the sample standard deviation of throughput and
// duration across the recorded iterations.
func (r *Result) Variance() Variance {
	if len(r.Iterations) < 2 {
		return Variance{}
	}
	throughputs := make([]float64, len(r.Iterations))
	durations := make([]float64, len(r.Iterations))
	for i, it := range r.Iterations {
		throughputs[i] = it.ThroughputPerSec
		durations[i] = it.DurationMS
	}
	return Variance{
		ThroughputStddev: sampleStddev(throughputs),
		DurationStddevMS: sampleStddev(durations),
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStddev is the n-1 (Bessel-corrected) standard deviation.
func sampleStddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mu := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mu
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
