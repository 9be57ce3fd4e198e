package dataset

import (
	"fmt"
	"time"
)

// StatusCode is the wire enumeration for market-event status codes.
type StatusCode string

const (
	CodeAck            StatusCode = "ACK"
	CodeMatched        StatusCode = "MATCHED"
	CodePartialSettled StatusCode = "PARTIAL_SETTLED"
	CodeSettled        StatusCode = "SETTLED"
)

// ValidCode reports whether s is one of the wire status codes.
func ValidCode(s string) bool {
	switch StatusCode(s) {
	case CodeAck, CodeMatched, CodePartialSettled, CodeSettled:
		return true
	}
	return false
}

// Obligation is a settlement instruction the engine must match against
// market activity. Immutable once written to the obligation feed.
type Obligation struct {
	ID          string // unique key, e.g. OBL00042
	Venue       string
	ISIN        string
	Account     string
	SettleDate  string // YYYY-MM-DD
	IntendedQty int64
}

// MarketEvent is a timestamped status update. Multiple events may share a
// MsgID with increasing Seq, modeling one obligation's lifecycle.
type MarketEvent struct {
	MsgID      string
	Seq        int
	Code       StatusCode
	ISIN       string
	Account    string
	SettleDate string
	Qty        int64
	At         time.Time
}

// Spec describes the requested shape of a generated dataset.
type Spec struct {
	// Obligations is the number of obligations to generate.
	Obligations int

	// Events is the total number of non-duplicate, non-orphan events.
	// Must be at least Obligations; the first Obligations events are the
	// primary MATCHED event for each obligation.
	Events int

	// Duplicates is the requested number of verbatim event copies.
	// Capped to the number of events available to duplicate.
	Duplicates int

	// Orphans is the number of events referencing obligation identifiers
	// guaranteed absent from the obligation set.
	Orphans int

	// Seed drives the deterministic random source.
	Seed int64
}

// Validate checks the spec invariants.
func (s Spec) Validate() error {
	if s.Obligations <= 0 {
		return fmt.Errorf("obligations must be positive, got %d", s.Obligations)
	}
	if s.Events < s.Obligations {
		return fmt.Errorf("events (%d) must be at least obligations (%d)", s.Events, s.Obligations)
	}
	if s.Duplicates < 0 {
		return fmt.Errorf("duplicates must be non-negative, got %d", s.Duplicates)
	}
	if s.Orphans < 0 {
		return fmt.Errorf("orphans must be non-negative, got %d", s.Orphans)
	}
	return nil
}

// Outcome is the analytic oracle: the status-log line counts the engine is
// expected to produce for a generated dataset.
type Outcome struct {
	Matches    int // StateChanged(...to=Matched...) lines
	Unmatches  int // NoMatch(...) lines
	Duplicates int // DuplicateIgnored(...) lines
}

// Dataset is the generated input set plus its oracle.
type Dataset struct {
	Obligations []Obligation
	Events      []MarketEvent
	Expected    Outcome
}
