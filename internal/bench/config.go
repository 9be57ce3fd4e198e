// Package bench executes benchmark scenarios against the external engine:
// warmup iterations whose measurements are discarded, then measurement
// iterations recorded in full, with means and variance computed across the
// recorded set. Results are persisted as immutable JSON documents.
package bench

import (
	"time"

	"github.com/arnevik/settlebench/internal/dataset"
)

// Config is one named benchmark scenario.
type Config struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`

	// Dataset shape.
	Obligations int   `yaml:"obligations" json:"obligations"`
	Events      int   `yaml:"events" json:"events"`
	Duplicates  int   `yaml:"duplicates" json:"duplicates"`
	Orphans     int   `yaml:"orphans" json:"orphans"`
	Seed        int64 `yaml:"seed,omitempty" json:"seed"`

	// Iteration plan.
	WarmupIterations      int `yaml:"warmup_iterations,omitempty" json:"warmup_iterations"`
	MeasurementIterations int `yaml:"measurement_iterations,omitempty" json:"measurement_iterations"`

	// TimeoutSec bounds one engine run.
	TimeoutSec float64 `yaml:"timeout_sec,omitempty" json:"timeout_sec"`
}

// Defaults applied to scenario fields left at zero.
const (
	DefaultSeed                  = 12345
	DefaultWarmupIterations      = 3
	DefaultMeasurementIterations = 5
	DefaultTimeoutSec            = 60.0
)

// withDefaults returns a copy of c with zero fields filled in.
func (c Config) withDefaults() Config {
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.WarmupIterations == 0 {
		c.WarmupIterations = DefaultWarmupIterations
	}
	if c.MeasurementIterations == 0 {
		c.MeasurementIterations = DefaultMeasurementIterations
	}
	if c.TimeoutSec == 0 {
		c.TimeoutSec = DefaultTimeoutSec
	}
	return c
}

// Timeout returns the scenario timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec * float64(time.Second))
}

// DatasetSpec returns the dataset spec for this scenario.
func (c Config) DatasetSpec() dataset.Spec {
	return dataset.Spec{
		Obligations: c.Obligations,
		Events:      c.Events,
		Duplicates:  c.Duplicates,
		Orphans:     c.Orphans,
		Seed:        c.Seed,
	}
}

// DefaultScenarios returns the standard scenario set, ordered roughly by
// dataset size.
func DefaultScenarios() []Config {
	scenarios := []Config{
		{
			Name:        "micro",
			Description: "Micro benchmark: minimal dataset for baseline",
			Obligations: 10,
			Events:      20,
			Duplicates:  2,
			Orphans:     1,
		},
		{
			Name:                  "small",
			Description:           "Small dataset: typical single-batch processing",
			Obligations:           100,
			Events:                250,
			Duplicates:            10,
			Orphans:               5,
			MeasurementIterations: 10,
		},
		{
			Name:        "medium",
			Description: "Medium dataset: moderate real-world load",
			Obligations: 1000,
			Events:      2500,
			Duplicates:  50,
			Orphans:     25,
		},
		{
			Name:                  "large",
			Description:           "Large dataset: high-volume processing test",
			Obligations:           5000,
			Events:                12500,
			Duplicates:            250,
			Orphans:               100,
			MeasurementIterations: 3,
			TimeoutSec:            120,
		},
		{
			Name:                  "xl",
			Description:           "Extra large: stress test for scalability limits",
			Obligations:           10000,
			Events:                25000,
			Duplicates:            500,
			Orphans:               200,
			MeasurementIterations: 2,
			TimeoutSec:            300,
		},
		{
			Name:        "throughput",
			Description: "Throughput test: many events per obligation",
			Obligations: 500,
			Events:      5000,
			Duplicates:  100,
			Orphans:     50,
		},
		{
			Name:                  "memory",
			Description:           "Memory test: many obligations, few events each",
			Obligations:           5000,
			Events:                5500,
			Duplicates:            25,
			Orphans:               25,
			MeasurementIterations: 3,
		},
	}
	for i := range scenarios {
		scenarios[i] = scenarios[i].withDefaults()
	}
	return scenarios
}
