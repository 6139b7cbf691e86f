package execution

import (
	"context"
	"time"
)

// Executor runs one external command to completion or timeout
type Executor interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// State is the lifecycle of a single invocation.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
	StateTimedOut
	StateFailedToStart
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed-out"
	case StateFailedToStart:
		return "failed-to-start"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Result is the outcome of a finished invocation
type Result struct {
	ExitCode int           // Child exit code or one of the Exit* sentinels
	Elapsed  time.Duration // Spawn-to-exit wall time, log flushing excluded
	Stdout   string        // Output drained from stdout
	Stderr   string        // Output drained from stderr
	Pid      int
	State    State
}
