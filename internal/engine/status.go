package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LineKind classifies one status-log line. The status log is an append-only
// text artifact; classification is by line prefix (and, for matched
// transitions, one substring), which is the engine's deliberate low-overhead
// contract. The tagged kinds make that contract explicit and testable.
type LineKind int

const (
	// KindOther is any line the harness does not count, including state
	// transitions to states other than Matched.
	KindOther LineKind = iota

	// KindMatched is a StateChanged line whose target state is Matched.
	KindMatched

	// KindNoMatch is an event the engine could not associate with any
	// known obligation.
	KindNoMatch

	// KindDuplicate is a previously seen event received again and
	// discarded.
	KindDuplicate
)

func (k LineKind) String() string {
	switch k {
	case KindMatched:
		return "matched"
	case KindNoMatch:
		return "no-match"
	case KindDuplicate:
		return "duplicate"
	}
	return "other"
}

// Status-log line markers.
const (
	stateChangedPrefix = "StateChanged("
	matchedNeedle      = "to=Matched"
	noMatchPrefix      = "NoMatch("
	duplicatePrefix    = "DuplicateIgnored("
)

// Classify returns the kind of a single status-log line.
func Classify(line string) LineKind {
	switch {
	case strings.HasPrefix(line, stateChangedPrefix):
		if strings.Contains(line, matchedNeedle) {
			return KindMatched
		}
		return KindOther
	case strings.HasPrefix(line, noMatchPrefix):
		return KindNoMatch
	case strings.HasPrefix(line, duplicatePrefix):
		return KindDuplicate
	}
	return KindOther
}

// Counts is the observed (or expected) triple of countable status lines.
type Counts struct {
	Matches    int
	Unmatches  int
	Duplicates int
}

// Equal reports whether two triples are exactly equal.
func (c Counts) Equal(o Counts) bool { return c == o }

// String renders the triple for diagnostics.
func (c Counts) String() string {
	return fmt.Sprintf("matches=%d unmatches=%d duplicates=%d", c.Matches, c.Unmatches, c.Duplicates)
}

// CountStatus tallies countable lines from a status-log reader.
func CountStatus(r io.Reader) (Counts, error) {
	var counts Counts
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		switch Classify(scanner.Text()) {
		case KindMatched:
			counts.Matches++
		case KindNoMatch:
			counts.Unmatches++
		case KindDuplicate:
			counts.Duplicates++
		}
	}
	if err := scanner.Err(); err != nil {
		return counts, fmt.Errorf("reading status log: %w", err)
	}
	return counts, nil
}

// ReadStatusCounts reads the status log at path and tallies it. A missing
// file is not an error: the engine may not have created it yet, so the
// counts are simply zero.
func ReadStatusCounts(path string) (Counts, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Counts{}, nil
		}
		return Counts{}, fmt.Errorf("opening status log: %w", err)
	}
	defer f.Close()
	return CountStatus(f)
}
