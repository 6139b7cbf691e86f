package execution

import (
	"strconv"
	"strings"
	"time"
)

// DefaultPollInterval is how often a running child is checked against its deadline.
const DefaultPollInterval = 100 * time.Millisecond

// Exit code sentinels reported when no real exit status exists. A child killed by a
// signal it did not handle reports -1, as os.ProcessState does.
const (
	// ExitNotStarted means the process could not be started.
	ExitNotStarted = -2
	// ExitTimedOut means the runner terminated the process (timeout or cancellation).
	ExitTimedOut = -3
)

// Command describes one external program invocation.
type Command struct {
	Path         string        // Executable name or path, resolved through PATH when bare
	Args         []string      // Ordered arguments
	Timeout      time.Duration // Zero means no deadline
	EchoOutput   bool          // Echo output to the console while the child runs
	StdoutLog    string        // Append captured stdout to this file after exit
	StderrLog    string        // Append captured stderr to this file after exit
	PollInterval time.Duration // Zero means DefaultPollInterval
	Env          []string      // Extra KEY=VALUE pairs appended to the parent environment
	Dir          string        // Working directory, empty for the current one
}

// String renders the command line for reports.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Path
	}
	return c.Path + " " + strings.Join(c.Args, " ")
}

// Validate checks the shape of the command before anything is spawned.
func (c Command) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return &ValidationError{Field: "path", Reason: "executable cannot be empty"}
	}
	if strings.ContainsRune(c.Path, 0) {
		return &ValidationError{Field: "path", Reason: "contains NUL byte"}
	}
	for i, arg := range c.Args {
		if strings.ContainsRune(arg, 0) {
			return &ValidationError{Field: "args", Reason: "argument " + strconv.Itoa(i) + " contains NUL byte"}
		}
	}
	for _, kv := range c.Env {
		if strings.ContainsRune(kv, 0) {
			return &ValidationError{Field: "env", Reason: "entry contains NUL byte"}
		}
		if k, _, ok := strings.Cut(kv, "="); !ok || k == "" {
			return &ValidationError{Field: "env", Reason: "entry " + strconv.Quote(kv) + " is not KEY=VALUE"}
		}
	}
	if c.Timeout < 0 {
		return &ValidationError{Field: "timeout", Reason: "cannot be negative"}
	}
	if c.PollInterval < 0 {
		return &ValidationError{Field: "poll_interval", Reason: "cannot be negative"}
	}
	return nil
}

func (c Command) pollInterval() time.Duration {
	if c.PollInterval == 0 {
		return DefaultPollInterval
	}
	return c.PollInterval
}
