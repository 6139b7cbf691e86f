package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var _ Executor = (*Runner)(nil)

// drainGrace bounds how long output is still read after the child exits. A
// background process the child started can keep the pipes open indefinitely.
const drainGrace = 250 * time.Millisecond

// Runner executes a single external command
type Runner struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// NewRunner creates a new Runner. stdout and stderr receive echoed child output
// for commands with EchoOutput set; nil writers disable echoing.
func NewRunner(stdout, stderr io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	mu := &sync.Mutex{}
	r := &Runner{logger: logger}
	if stdout != nil {
		r.stdout = syncWriter{mu: mu, w: stdout}
	}
	if stderr != nil {
		r.stderr = syncWriter{mu: mu, w: stderr}
	}
	return r
}

// Run spawns the command, drains its output, and waits for it to exit or to
// outlive its deadline. The returned Result is non-nil even on error.
func (r *Runner) Run(ctx context.Context, c Command) (*Result, error) {
	result := &Result{ExitCode: ExitNotStarted, State: StateNotStarted}
	if err := c.Validate(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("%s: %w", c.Path, err)
	}

	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		result.State = StateFailedToStart
		return result, &SpawnError{Path: c.Path, Err: err}
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		result.State = StateFailedToStart
		return result, &SpawnError{Path: c.Path, Err: err}
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	start := time.Now()
	if err := cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		stderrR.Close()
		stderrW.Close()
		result.State = StateFailedToStart
		return result, &SpawnError{Path: c.Path, Err: err}
	}
	result.State = StateRunning
	result.Pid = cmd.Process.Pid

	// The child owns the write ends now; closing ours lets the drainers see EOF.
	stdoutW.Close()
	stderrW.Close()

	var echoOut, echoErr io.Writer
	if c.EchoOutput {
		echoOut, echoErr = r.stdout, r.stderr
	}
	outDrainer := NewDrainer(stdoutR, echoOut)
	errDrainer := NewDrainer(stderrR, echoErr)
	var drainers errgroup.Group
	drainers.Go(outDrainer.Run)
	drainers.Go(errDrainer.Run)

	r.logger.Debug("Process started", "command", c.String(), "pid", result.Pid)

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	var deadline time.Time
	if c.Timeout > 0 {
		deadline = start.Add(c.Timeout)
	}
	ticker := time.NewTicker(c.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case waitErr := <-exited:
			return r.complete(ctx, c, result, waitErr, start, &drainers, outDrainer, errDrainer)

		case <-ticker.C:
			if deadline.IsZero() || time.Now().Before(deadline) {
				continue
			}
			// Deadline passed; the child may still have exited since the last poll.
			select {
			case waitErr := <-exited:
				return r.complete(ctx, c, result, waitErr, start, &drainers, outDrainer, errDrainer)
			default:
			}
			r.stop(cmd, result.Pid, "timeout")
			result.Elapsed = time.Since(start)
			result.State = StateTimedOut
			result.ExitCode = ExitTimedOut
			result.Stdout = outDrainer.Output()
			result.Stderr = errDrainer.Output()
			return result, &TimeoutError{Path: c.Path, Timeout: c.Timeout}

		case <-ctx.Done():
			r.stop(cmd, result.Pid, "canceled")
			result.Elapsed = time.Since(start)
			result.State = StateCanceled
			result.ExitCode = ExitTimedOut
			result.Stdout = outDrainer.Output()
			result.Stderr = errDrainer.Output()
			return result, fmt.Errorf("%s: %w", c.Path, ctx.Err())
		}
	}
}

// complete collects the drained output and flushes it to the log files. The
// drainers get until the grace period or ctx ends to reach EOF; after that the
// read ends are closed.
func (r *Runner) complete(ctx context.Context, c Command, result *Result, waitErr error, start time.Time,
	drainers *errgroup.Group, out, errOut *Drainer) (*Result, error) {
	drained := make(chan error, 1)
	go func() {
		drained <- drainers.Wait()
	}()

	timer := time.NewTimer(drainGrace)
	defer timer.Stop()

	var drainErr error
	select {
	case drainErr = <-drained:
	case <-timer.C:
		r.logger.Debug("Output pipes still open after exit", "command", c.String(), "pid", result.Pid)
		drainErr = stopDrainers(drained, out, errOut)
	case <-ctx.Done():
		drainErr = stopDrainers(drained, out, errOut)
	}
	if drainErr != nil {
		r.logger.Warn("Output drain failed", "command", c.String(), "err", drainErr)
	}
	result.Elapsed = time.Since(start)
	result.Stdout = out.Output()
	result.Stderr = errOut.Output()
	result.State = StateCompleted

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			result.ExitCode = ExitNotStarted
			return result, fmt.Errorf("wait for %s: %w", c.Path, waitErr)
		}
		result.ExitCode = exitErr.ExitCode()
	} else {
		result.ExitCode = 0
	}

	r.logger.Debug("Process exited", "command", c.String(), "pid", result.Pid,
		"code", result.ExitCode, "elapsed", result.Elapsed)

	if err := flushLogs(c, result); err != nil {
		r.logger.Warn("Failed to write process output", "command", c.String(), "err", err)
	}
	return result, nil
}

// stopDrainers closes the read ends and waits for the drainers to return.
func stopDrainers(drained <-chan error, drainers ...*Drainer) error {
	for _, d := range drainers {
		d.Stop()
	}
	return <-drained
}

func (r *Runner) stop(cmd *exec.Cmd, pid int, reason string) {
	if err := terminate(cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
		r.logger.Warn("Failed to terminate process", "pid", pid, "reason", reason, "err", err)
		return
	}
	r.logger.Debug("Process terminated", "pid", pid, "reason", reason)
}

// flushLogs appends stdout then stderr, so a shared path gets them in that order.
func flushLogs(c Command, result *Result) error {
	if c.StdoutLog != "" {
		if err := AppendFile(c.StdoutLog, result.Stdout); err != nil {
			return err
		}
	}
	if c.StderrLog != "" {
		if err := AppendFile(c.StderrLog, result.Stderr); err != nil {
			return err
		}
	}
	return nil
}

// AppendFile opens path in append mode, writes text, and closes it again.
func AppendFile(path, text string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("write log file: %w", err)
	}
	return f.Close()
}
