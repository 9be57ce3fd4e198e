package bench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSuite(t *testing.T) {
	path := writeSuite(t, `
scenarios:
  - name: smoke
    description: quick smoke run
    obligations: 25
    events: 25
    duplicates: 5
    orphans: 7
    seed: 42
    warmup_iterations: 1
    measurement_iterations: 2
    timeout_sec: 20
  - name: nightly
    obligations: 2000
    events: 5000
    duplicates: 100
    orphans: 50
`)

	suite, err := LoadSuite(path)
	require.NoError(t, err)
	require.Len(t, suite.Scenarios, 2)
	assert.Equal(t, []string{"smoke", "nightly"}, suite.Names())

	smoke, ok := suite.ByName("smoke")
	require.True(t, ok)
	assert.Equal(t, 25, smoke.Obligations)
	assert.Equal(t, int64(42), smoke.Seed)
	assert.Equal(t, 1, smoke.WarmupIterations)
	assert.Equal(t, 2, smoke.MeasurementIterations)
	assert.Equal(t, 20.0, smoke.TimeoutSec)

	// Defaults applied to fields the file leaves out.
	nightly, ok := suite.ByName("nightly")
	require.True(t, ok)
	assert.Equal(t, int64(DefaultSeed), nightly.Seed)
	assert.Equal(t, DefaultWarmupIterations, nightly.WarmupIterations)
	assert.Equal(t, DefaultMeasurementIterations, nightly.MeasurementIterations)
	assert.Equal(t, DefaultTimeoutSec, nightly.TimeoutSec)

	_, ok = suite.ByName("missing")
	assert.False(t, ok)
}

func TestLoadSuite_UnknownFieldRejected(t *testing.T) {
	path := writeSuite(t, `
scenarios:
  - name: smoke
    obligations: 25
    events: 25
    orfans: 7
`)
	_, err := LoadSuite(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadSuite_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"empty scenarios",
			"scenarios: []\n",
			"scenarios list is required",
		},
		{
			"missing name",
			"scenarios:\n  - obligations: 10\n    events: 10\n",
			"name is required",
		},
		{
			"zero obligations",
			"scenarios:\n  - name: x\n    obligations: 0\n    events: 10\n",
			"obligations must be positive",
		},
		{
			"events below obligations",
			"scenarios:\n  - name: x\n    obligations: 10\n    events: 5\n",
			"must be at least obligations",
		},
		{
			"negative duplicates",
			"scenarios:\n  - name: x\n    obligations: 10\n    events: 10\n    duplicates: -1\n",
			"duplicates must be non-negative",
		},
		{
			"duplicate names",
			"scenarios:\n  - name: x\n    obligations: 10\n    events: 10\n  - name: x\n    obligations: 10\n    events: 10\n",
			`duplicate scenario name "x"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadSuite(writeSuite(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadSuite_MissingFile(t *testing.T) {
	_, err := LoadSuite(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
