package harness

import (
	"context"
	"runtime"
	"sync"
	"testing"

	"ept/internal/config"
	"ept/internal/domain"
	"ept/internal/execution"
)

// fakeExecutor returns the exit code mapped to the command path, or err when set.
type fakeExecutor struct {
	mu    sync.Mutex
	codes map[string]int
	errs  map[string]error
	calls []string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		codes: map[string]int{"true": 0, "false": 1},
		errs:  make(map[string]error),
	}
}

func (f *fakeExecutor) Run(_ context.Context, cmd execution.Command) (*execution.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd.String())
	if err, ok := f.errs[cmd.Path]; ok {
		return &execution.Result{ExitCode: execution.ExitNotStarted, State: execution.StateFailedToStart}, err
	}
	return &execution.Result{ExitCode: f.codes[cmd.Path], State: execution.StateCompleted}, nil
}

func (f *fakeExecutor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// recordingReporter keeps the sequence of events it saw.
type recordingReporter struct {
	NopReporter
	events []string
	checks []domain.CheckResult
	errors []error
	totals *domain.Totals
}

func (r *recordingReporter) SuiteStarted(opts config.SuiteOptions) {
	r.events = append(r.events, "suite:"+opts.Name)
}

func (r *recordingReporter) CaseStarted(c *Case) {
	r.events = append(r.events, "case:"+c.Name)
}

func (r *recordingReporter) CheckFinished(_ *Case, chk domain.CheckResult) {
	r.checks = append(r.checks, chk)
}

func (r *recordingReporter) SuiteFinished(rec domain.SuiteRecord) {
	r.events = append(r.events, "done:"+rec.Name)
}

func (r *recordingReporter) Error(_, _ string, err error) {
	r.errors = append(r.errors, err)
}

func (r *recordingReporter) RunFinished(totals domain.Totals, _ []domain.SuiteRecord) {
	r.totals = &totals
}

func testOptions(name string) config.SuiteOptions {
	opts := config.DefaultSuiteOptions()
	opts.Name = name
	opts.EchoOutput = false
	opts.TruncateLogs = false
	opts.LogPaths = config.LogPaths{}
	return opts
}

func newTestSuite(t *testing.T, opts config.SuiteOptions) *Suite {
	t.Helper()
	s, err := NewSuite(opts)
	if err != nil {
		t.Fatalf("NewSuite() error = %v", err)
	}
	return s
}

func requirePOSIX(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires POSIX shell utilities")
	}
}
