package bench

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Suite is a set of scenarios loaded from a YAML file.
type Suite struct {
	Scenarios []Config `yaml:"scenarios"`
}

// LoadSuite reads and parses a scenario suite YAML file. Unknown fields are
// rejected (catches typos like "orfans:"); required fields are validated and
// defaults applied to the rest.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(suite.Scenarios) == 0 {
		return nil, fmt.Errorf("invalid suite: scenarios list is required and must be non-empty")
	}
	names := make(map[string]struct{}, len(suite.Scenarios))
	for i, cfg := range suite.Scenarios {
		if err := validateConfig(&cfg); err != nil {
			return nil, fmt.Errorf("invalid suite: scenarios[%d]: %w", i, err)
		}
		if _, dup := names[cfg.Name]; dup {
			return nil, fmt.Errorf("invalid suite: duplicate scenario name %q", cfg.Name)
		}
		names[cfg.Name] = struct{}{}
		suite.Scenarios[i] = cfg.withDefaults()
	}
	return &suite, nil
}

// ByName returns the named scenario, or false.
func (s *Suite) ByName(name string) (Config, bool) {
	for _, cfg := range s.Scenarios {
		if cfg.Name == name {
			return cfg, true
		}
	}
	return Config{}, false
}

// Names lists the scenario names in declaration order.
func (s *Suite) Names() []string {
	names := make([]string, len(s.Scenarios))
	for i, cfg := range s.Scenarios {
		names[i] = cfg.Name
	}
	return names
}

func validateConfig(c *Config) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Obligations <= 0 {
		return fmt.Errorf("obligations must be positive")
	}
	if c.Events < c.Obligations {
		return fmt.Errorf("events (%d) must be at least obligations (%d)", c.Events, c.Obligations)
	}
	if c.Duplicates < 0 {
		return fmt.Errorf("duplicates must be non-negative")
	}
	if c.Orphans < 0 {
		return fmt.Errorf("orphans must be non-negative")
	}
	if c.WarmupIterations < 0 {
		return fmt.Errorf("warmup_iterations must be non-negative")
	}
	if c.MeasurementIterations < 0 {
		return fmt.Errorf("measurement_iterations must be non-negative")
	}
	if c.TimeoutSec < 0 {
		return fmt.Errorf("timeout_sec must be non-negative")
	}
	return nil
}
