package engine

import (
	"errors"
	"fmt"
	"strings"
)

// SpawnError indicates the engine child process could not be started.
// Spawn failure is a distinct error class from the matching outcome: it is
// fatal to the current iteration and propagates to the caller, whereas a
// timeout is returned as a distinguished non-error Outcome.
type SpawnError struct {
	Argv []string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn engine %q: %v", strings.Join(e.Argv, " "), e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// IsSpawnError reports whether err is (or wraps) a SpawnError.
func IsSpawnError(err error) bool {
	var se *SpawnError
	return errors.As(err, &se)
}
