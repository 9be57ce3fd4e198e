package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want LineKind
	}{
		{"matched transition", "StateChanged(obligation=OBL00001, from=Pending, to=Matched)", KindMatched},
		{"other transition", "StateChanged(obligation=OBL00001, from=Matched, to=Settled)", KindOther},
		{"partial transition", "StateChanged(obligation=OBL00001, from=Matched, to=PartiallySettled)", KindOther},
		{"no match", "NoMatch(msgId=M_FAKE0, isin=XQZKPLMRTWVB)", KindNoMatch},
		{"duplicate", "DuplicateIgnored(msgId=M_OBL00003, seq=1)", KindDuplicate},
		{"blank", "", KindOther},
		{"free text", "engine started", KindOther},
		{"indented marker does not count", "  StateChanged(obligation=X, to=Matched)", KindOther},
		{"matched needle alone does not count", "to=Matched", KindOther},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.line))
		})
	}
}

func TestLineKindString(t *testing.T) {
	assert.Equal(t, "matched", KindMatched.String())
	assert.Equal(t, "no-match", KindNoMatch.String())
	assert.Equal(t, "duplicate", KindDuplicate.String())
	assert.Equal(t, "other", KindOther.String())
}

func TestCountStatus(t *testing.T) {
	log := strings.Join([]string{
		"StateChanged(obligation=OBL00001, from=Pending, to=Acknowledged)",
		"StateChanged(obligation=OBL00001, from=Acknowledged, to=Matched)",
		"StateChanged(obligation=OBL00002, from=Pending, to=Matched)",
		"DuplicateIgnored(msgId=M_OBL00002, seq=1)",
		"NoMatch(msgId=M_FAKE0, isin=XQZKPLMRTWVB)",
		"StateChanged(obligation=OBL00001, from=Matched, to=Settled)",
		"NoMatch(msgId=M_FAKE1, isin=QWERTYUIOPAS)",
	}, "\n") + "\n"

	counts, err := CountStatus(strings.NewReader(log))
	require.NoError(t, err)
	assert.Equal(t, Counts{Matches: 2, Unmatches: 2, Duplicates: 1}, counts)
}

func TestCountStatus_Empty(t *testing.T) {
	counts, err := CountStatus(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)
}

func TestReadStatusCounts_MissingFileIsZero(t *testing.T) {
	counts, err := ReadStatusCounts(filepath.Join(t.TempDir(), "status.txt"))
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)
}

func TestReadStatusCounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.txt")
	require.NoError(t, os.WriteFile(path, []byte(
		"StateChanged(obligation=OBL00001, from=Pending, to=Matched)\n"+
			"NoMatch(msgId=M_FAKE0, isin=XQZKPLMRTWVB)\n"), 0o644))

	counts, err := ReadStatusCounts(path)
	require.NoError(t, err)
	assert.Equal(t, Counts{Matches: 1, Unmatches: 1}, counts)
}

func TestCountsString(t *testing.T) {
	c := Counts{Matches: 25, Unmatches: 7, Duplicates: 5}
	assert.Equal(t, "matches=25 unmatches=7 duplicates=5", c.String())
	assert.True(t, c.Equal(Counts{Matches: 25, Unmatches: 7, Duplicates: 5}))
	assert.False(t, c.Equal(Counts{Matches: 25, Unmatches: 7, Duplicates: 4}))
}
