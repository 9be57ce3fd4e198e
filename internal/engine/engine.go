// Package engine drives the external settlement-matching engine through its
// file-based contract: spawn it as a child process, poll the append-only
// status log until the expected outcome appears or a timeout elapses, and
// guarantee the child is terminated on every exit path.
//
// The engine itself is an external collaborator. This package only knows
// the contract: the engine consumes the obligation and event feeds, appends
// classified lines to the status log, and (in benchmark mode) prints a
// single metrics line on stdout.
package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// BenchmarkModeEnv is the environment flag that enables the engine's
// instrumentation mode.
const BenchmarkModeEnv = "BENCHMARK_MODE=true"

// Default polling parameters.
const (
	DefaultInterval = 200 * time.Millisecond
	DefaultGrace    = 5 * time.Second
)

// Command describes how to launch the engine.
type Command struct {
	// Argv is the full command line, program first.
	Argv []string

	// Dir is the working directory for the child (empty: inherit).
	Dir string

	// Env holds extra KEY=VALUE entries appended to the inherited
	// environment. BenchmarkModeEnv is always added.
	Env []string
}

// Runner synchronizes one engine run against an expected outcome.
//
// Completion is detected by polling the status log, not by process exit,
// because the engine may run as a long-lived service. The polling loop is an
// explicit state machine (Polling, then Satisfied or TimedOut) driven by a
// Clock, so the same logic runs against a simulated clock in tests.
type Runner struct {
	Command    Command
	StatusPath string

	// Interval is the sleep between status-log polls.
	Interval time.Duration

	// Grace is how long to wait after a termination request before
	// force-killing the child.
	Grace time.Duration

	Clock  Clock
	Logger *slog.Logger
}

// NewRunner returns a Runner with default interval, grace period, wall
// clock, and a discard logger.
func NewRunner(cmd Command, statusPath string) *Runner {
	return &Runner{
		Command:    cmd,
		StatusPath: statusPath,
		Interval:   DefaultInterval,
		Grace:      DefaultGrace,
		Clock:      WallClock(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// PollState is the polling state machine's position.
type PollState int

const (
	// Polling means the expected triple has not been observed yet.
	Polling PollState = iota

	// Satisfied means the observed triple exactly equals the expected one.
	Satisfied

	// TimedOut means the timeout elapsed first; the observed triple is the
	// best seen, never fabricated.
	TimedOut
)

func (s PollState) String() string {
	switch s {
	case Polling:
		return "polling"
	case Satisfied:
		return "satisfied"
	case TimedOut:
		return "timed-out"
	}
	return "unknown"
}

// PollResult is the terminal state of one polling run.
type PollResult struct {
	State    PollState
	Observed Counts
	Elapsed  time.Duration
}

// Outcome is the result of one engine run. A timeout is not an error at this
// layer: Satisfied is false and Observed carries the best-seen counts, and
// the caller decides whether the mismatch is fatal.
type Outcome struct {
	Satisfied bool
	Observed  Counts
	Elapsed   time.Duration

	// Metrics is parsed from the engine's stdout; zero-valued when the
	// engine emitted no metrics line.
	Metrics Metrics

	Stdout string
	Stderr string
}

// Run spawns the engine and polls the status log until expected is observed
// or timeout elapses. The child process is terminated (gracefully, then
// force-killed after the grace period) before Run returns, on success,
// timeout, and error paths alike.
//
// The input feeds must already be written: the engine starts consuming them
// immediately.
func (r *Runner) Run(ctx context.Context, expected Counts, timeout time.Duration) (*Outcome, error) {
	proc, err := r.spawn()
	if err != nil {
		return nil, err
	}
	// Unconditional release: whatever path exits Run, the child dies.
	defer proc.shutdown(r)

	res, err := r.Poll(ctx, expected, timeout)
	if err != nil {
		return nil, err
	}

	// Terminate before reading captured output so the metrics line, which
	// the engine may emit on shutdown, is complete.
	proc.shutdown(r)

	out := proc.stdout.String()
	return &Outcome{
		Satisfied: res.State == Satisfied,
		Observed:  res.Observed,
		Elapsed:   res.Elapsed,
		Metrics:   ParseMetrics(out),
		Stdout:    out,
		Stderr:    proc.stderr.String(),
	}, nil
}

// Poll drives the polling state machine against the status log. It performs
// an immediate first check, so an already satisfied log returns without
// waiting, then re-checks every Interval until the deadline. The returned
// error is non-nil only for context cancellation or status-log I/O failure.
func (r *Runner) Poll(ctx context.Context, expected Counts, timeout time.Duration) (PollResult, error) {
	start := r.Clock.Now()
	deadline := start.Add(timeout)

	res := PollResult{State: Polling}
	for {
		counts, err := ReadStatusCounts(r.StatusPath)
		if err != nil {
			res.Elapsed = r.Clock.Now().Sub(start)
			return res, err
		}
		res.Observed = counts

		now := r.Clock.Now()
		if counts.Equal(expected) {
			res.State = Satisfied
			res.Elapsed = now.Sub(start)
			return res, nil
		}
		if !now.Before(deadline) {
			res.State = TimedOut
			res.Elapsed = now.Sub(start)
			r.Logger.Warn("poll timed out",
				"expected", expected.String(),
				"observed", counts.String(),
				"elapsed", res.Elapsed,
			)
			return res, nil
		}

		select {
		case <-ctx.Done():
			res.Elapsed = r.Clock.Now().Sub(start)
			return res, ctx.Err()
		case <-r.Clock.After(r.Interval):
		}
	}
}

// engineProcess owns one spawned child and its captured output.
type engineProcess struct {
	cmd    *exec.Cmd
	stdout bytes.Buffer
	stderr bytes.Buffer
	done   chan error
	once   sync.Once
}

func (r *Runner) spawn() (*engineProcess, error) {
	if len(r.Command.Argv) == 0 {
		return nil, &SpawnError{Err: errors.New("empty engine command")}
	}

	p := &engineProcess{done: make(chan error, 1)}
	cmd := exec.Command(r.Command.Argv[0], r.Command.Argv[1:]...)
	cmd.Dir = r.Command.Dir
	cmd.Env = append(os.Environ(), r.Command.Env...)
	cmd.Env = append(cmd.Env, BenchmarkModeEnv)
	cmd.Stdout = &p.stdout
	cmd.Stderr = &p.stderr

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Argv: r.Command.Argv, Err: err}
	}
	p.cmd = cmd
	go func() { p.done <- cmd.Wait() }()

	r.Logger.Debug("engine spawned", "pid", cmd.Process.Pid, "argv", r.Command.Argv)
	return p, nil
}

// shutdown terminates the child: graceful termination request first, then
// force-kill after the grace period. Idempotent; blocks until the child is
// reaped.
func (p *engineProcess) shutdown(r *Runner) {
	p.once.Do(func() {
		select {
		case <-p.done:
			return // already exited on its own
		default:
		}

		if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
			r.Logger.Debug("termination signal failed", "error", err)
		}
		select {
		case <-p.done:
		case <-r.Clock.After(r.Grace):
			r.Logger.Warn("engine ignored termination request, killing",
				"pid", p.cmd.Process.Pid, "grace", r.Grace)
			_ = p.cmd.Process.Kill()
			<-p.done
		}
	})
}
