package testutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/arnevik/settlebench/internal/dataset"
)

// StubEngine is a minimal in-process stand-in for the external matching
// engine. It consumes the obligation and event feeds, appends contract
// status lines to the status log, and optionally emits the benchmark
// metrics line on Out.
//
// Matching is by (isin, account, settleDate); duplicate detection is by
// (msgId, seq). Exactly one to=Matched transition is emitted per obligation
// because every obligation has exactly one MATCHED event in a generated
// dataset. The stub exists to exercise the harness end to end, not to model
// real matching semantics.
type StubEngine struct {
	ObligationPath string
	EventPath      string
	StatusPath     string

	// BenchmarkMode emits the BENCHMARK_METRICS line on Out after the
	// feeds are drained.
	BenchmarkMode bool

	// Out receives the metrics line (defaults to os.Stdout).
	Out io.Writer
}

type stubObligation struct {
	id    string
	state string
}

// Run processes both feeds once and returns. Status lines are flushed to
// the log individually so a concurrent poller observes incremental
// progress, the way the real engine streams its status.
func (s *StubEngine) Run() error {
	start := time.Now()
	out := s.Out
	if out == nil {
		out = os.Stdout
	}

	obligations := make(map[string]*stubObligation)
	obligationLines, err := readLines(s.ObligationPath)
	if err != nil {
		return fmt.Errorf("reading obligation feed: %w", err)
	}
	for _, line := range obligationLines {
		ob, err := dataset.ParseObligation(line)
		if err != nil {
			return err
		}
		obligations[matchKey(ob.ISIN, ob.Account, ob.SettleDate)] = &stubObligation{
			id:    ob.ID,
			state: "Unmatched",
		}
	}

	status, err := os.OpenFile(s.StatusPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening status log: %w", err)
	}
	defer status.Close()

	emit := func(format string, args ...any) error {
		if _, err := fmt.Fprintf(status, format+"\n", args...); err != nil {
			return fmt.Errorf("appending status line: %w", err)
		}
		return status.Sync()
	}

	eventLines, err := readLines(s.EventPath)
	if err != nil {
		return fmt.Errorf("reading event feed: %w", err)
	}

	seen := make(map[string]struct{})
	peak := len(obligations)
	for _, line := range eventLines {
		ev, err := dataset.ParseEvent(line)
		if err != nil {
			return err
		}

		dupKey := fmt.Sprintf("%s#%d", ev.MsgID, ev.Seq)
		if _, dup := seen[dupKey]; dup {
			if err := emit("DuplicateIgnored(msgId=%s, seq=%d)", ev.MsgID, ev.Seq); err != nil {
				return err
			}
			continue
		}
		seen[dupKey] = struct{}{}
		peak++

		ob, ok := obligations[matchKey(ev.ISIN, ev.Account, ev.SettleDate)]
		if !ok {
			if err := emit("NoMatch(msgId=%s, isin=%s)", ev.MsgID, ev.ISIN); err != nil {
				return err
			}
			continue
		}

		next := stateFor(ev.Code)
		if err := emit("StateChanged(obligation=%s, from=%s, to=%s)", ob.id, ob.state, next); err != nil {
			return err
		}
		ob.state = next
	}

	if s.BenchmarkMode {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		fmt.Fprintf(out, "%s memory_mb=%.1f, gc_time_ms=%.1f, duration_ms=%.1f, peak_entities=%d\n",
			"BENCHMARK_METRICS:",
			float64(ms.HeapAlloc)/(1024*1024),
			float64(ms.PauseTotalNs)/1e6,
			float64(time.Since(start).Microseconds())/1000,
			peak,
		)
	}
	return nil
}

func stateFor(code dataset.StatusCode) string {
	switch code {
	case dataset.CodeMatched:
		return "Matched"
	case dataset.CodePartialSettled:
		return "PartiallySettled"
	case dataset.CodeSettled:
		return "Settled"
	default:
		return "Acknowledged"
	}
}

func matchKey(isin, account, settleDate string) string {
	return isin + "|" + account + "|" + settleDate
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
