package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFeed(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestStubEngine_Run(t *testing.T) {
	dir := t.TempDir()
	obligationPath := filepath.Join(dir, "obligations.txt")
	eventPath := filepath.Join(dir, "events.txt")
	statusPath := filepath.Join(dir, "status.txt")

	writeFeed(t, obligationPath,
		"OBL00001,LSE,US0000000001,ACC100,2024-01-10,500",
		"OBL00002,NYSE,US0000000002,ACC200,2024-02-20,100",
	)
	writeFeed(t, eventPath,
		"M_OBL00001,1,MATCHED,US0000000001,ACC100,2024-01-10,500,2024-01-01T00:00:00Z",
		"M_OBL00001,1,MATCHED,US0000000001,ACC100,2024-01-10,500,2024-01-01T00:00:00Z", // duplicate
		"M_OBL00001,2,SETTLED,US0000000001,ACC100,2024-01-10,500,2024-01-01T00:00:00Z",
		"M_FAKE0,1,MATCHED,XQZKPLMRTWVB,ACC1000,2024-03-03,100,2024-01-01T00:00:00Z", // orphan
		"M_OBL00002,1,MATCHED,US0000000002,ACC200,2024-02-20,100,2024-01-01T00:00:00Z",
	)

	var out strings.Builder
	stub := &StubEngine{
		ObligationPath: obligationPath,
		EventPath:      eventPath,
		StatusPath:     statusPath,
		BenchmarkMode:  true,
		Out:            &out,
	}
	require.NoError(t, stub.Run())

	raw, err := os.ReadFile(statusPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	require.Len(t, lines, 5)

	assert.Equal(t, "StateChanged(obligation=OBL00001, from=Unmatched, to=Matched)", lines[0])
	assert.Equal(t, "DuplicateIgnored(msgId=M_OBL00001, seq=1)", lines[1])
	assert.Equal(t, "StateChanged(obligation=OBL00001, from=Matched, to=Settled)", lines[2])
	assert.Equal(t, "NoMatch(msgId=M_FAKE0, isin=XQZKPLMRTWVB)", lines[3])
	assert.Equal(t, "StateChanged(obligation=OBL00002, from=Unmatched, to=Matched)", lines[4])

	assert.True(t, strings.HasPrefix(out.String(), "BENCHMARK_METRICS: "))
	assert.Contains(t, out.String(), "peak_entities=6")
}

func TestStubEngine_NoMetricsOutsideBenchmarkMode(t *testing.T) {
	dir := t.TempDir()
	obligationPath := filepath.Join(dir, "obligations.txt")
	eventPath := filepath.Join(dir, "events.txt")

	writeFeed(t, obligationPath, "OBL00001,LSE,US0000000001,ACC100,2024-01-10,500")
	writeFeed(t, eventPath,
		"M_OBL00001,1,MATCHED,US0000000001,ACC100,2024-01-10,500,2024-01-01T00:00:00Z")

	var out strings.Builder
	stub := &StubEngine{
		ObligationPath: obligationPath,
		EventPath:      eventPath,
		StatusPath:     filepath.Join(dir, "status.txt"),
		Out:            &out,
	}
	require.NoError(t, stub.Run())
	assert.Empty(t, out.String())
}

func TestStubEngine_MissingFeedIsAnError(t *testing.T) {
	dir := t.TempDir()
	stub := &StubEngine{
		ObligationPath: filepath.Join(dir, "obligations.txt"),
		EventPath:      filepath.Join(dir, "events.txt"),
		StatusPath:     filepath.Join(dir, "status.txt"),
	}
	assert.Error(t, stub.Run())
}
