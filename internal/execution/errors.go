package execution

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors matched with errors.Is against the typed runner errors.
var (
	ErrValidation = errors.New("validation error")
	ErrSpawn      = errors.New("spawn error")
	ErrTimeout    = errors.New("timeout error")
)

// ValidationError reports a malformed command. It is returned before any process is spawned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// SpawnError reports that the operating system could not start the executable.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

func (e *SpawnError) Is(target error) bool { return target == ErrSpawn }

// TimeoutError reports that the child outlived its deadline and was terminated.
type TimeoutError struct {
	Path    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s did not complete before %.4f seconds elapsed", e.Path, e.Timeout.Seconds())
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// Kind names the failure class of a runner error, for report markers.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrSpawn):
		return "SpawnError"
	case errors.Is(err, ErrTimeout):
		return "TimeoutError"
	default:
		return "Error"
	}
}
