// Package channel manages the three file artifacts shared with the engine:
// the obligation feed, the market-event feed, and the append-only status log.
//
// Feeds are replaced atomically (write to a temporary file in the same
// directory, sync, then rename) so a concurrently starting engine process
// can never observe a partial write. The status log is truncated before each
// run so every iteration observes a clean engine state.
package channel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arnevik/settlebench/internal/dataset"
)

// Default artifact names inside the runtime directory.
const (
	ObligationFile = "obligations.txt"
	EventFile      = "events.txt"
	StatusFile     = "status.txt"
)

// Channels holds the paths of the engine's input and output artifacts.
type Channels struct {
	ObligationPath string
	EventPath      string
	StatusPath     string
}

// New returns channels rooted at dir using the default artifact names.
func New(dir string) *Channels {
	return &Channels{
		ObligationPath: filepath.Join(dir, ObligationFile),
		EventPath:      filepath.Join(dir, EventFile),
		StatusPath:     filepath.Join(dir, StatusFile),
	}
}

// WriteDataset replaces both feeds with the dataset's records and truncates
// the status log. The feeds are fully flushed and closed before this
// returns, so the engine may be spawned immediately afterwards.
func (c *Channels) WriteDataset(ds *dataset.Dataset) error {
	var obligations strings.Builder
	for _, o := range ds.Obligations {
		obligations.WriteString(dataset.EncodeObligation(o))
		obligations.WriteByte('\n')
	}
	if err := writeAtomic(c.ObligationPath, obligations.String()); err != nil {
		return fmt.Errorf("writing obligation feed: %w", err)
	}

	var events strings.Builder
	for _, e := range ds.Events {
		events.WriteString(dataset.EncodeEvent(e))
		events.WriteByte('\n')
	}
	if err := writeAtomic(c.EventPath, events.String()); err != nil {
		return fmt.Errorf("writing event feed: %w", err)
	}

	if err := c.ResetStatus(); err != nil {
		return err
	}
	return nil
}

// ResetStatus truncates the status log (creating it if absent).
func (c *Channels) ResetStatus() error {
	if err := os.MkdirAll(filepath.Dir(c.StatusPath), 0o755); err != nil {
		return fmt.Errorf("creating runtime directory: %w", err)
	}
	f, err := os.OpenFile(c.StatusPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("resetting status log: %w", err)
	}
	return f.Close()
}

// AppendObligation appends one record to the obligation feed.
// Used by the interactive feeder, not by benchmark runs.
func (c *Channels) AppendObligation(o dataset.Obligation) error {
	return appendLine(c.ObligationPath, dataset.EncodeObligation(o))
}

// AppendEvent appends one record to the market-event feed.
func (c *Channels) AppendEvent(e dataset.MarketEvent) error {
	return appendLine(c.EventPath, dataset.EncodeEvent(e))
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating runtime directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return f.Sync()
}

// writeAtomic writes content to path via a temporary file in the same
// directory followed by a rename, so readers observe either the old or the
// new content, never a partial write.
func writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating runtime directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after successful rename

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
