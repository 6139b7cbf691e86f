package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ept/internal/domain"
	"ept/internal/execution"
)

// NoTimeLimit disables a suite's default case time limit for one case.
const NoTimeLimit time.Duration = -1

// maxCapturedOutput bounds how much of each stream is kept in a check result.
const maxCapturedOutput = 4096

// CaseFunc is the body of a test case. Checks are issued through c; a returned
// error fails the case.
type CaseFunc func(ctx context.Context, c *Case) error

// HookFunc is a setup or teardown step.
type HookFunc func(ctx context.Context) error

// Fixture is a setup/teardown pair run around a single case body.
type Fixture struct {
	Setup    HookFunc
	Teardown HookFunc
}

// CaseDescriptor carries everything known about a case before it runs.
type CaseDescriptor struct {
	Name          string
	Description   string
	TimeLimit     time.Duration // Zero inherits the suite default, NoTimeLimit disables it
	PassThreshold *float64      // Nil inherits the suite's case_pass_threshold
	SkipSetup     bool          // Skip the fixture setup
	SkipTeardown  bool          // Skip the fixture teardown
	Fixture       *Fixture
}

// Threshold returns a pointer for CaseDescriptor.PassThreshold.
func Threshold(v float64) *float64 {
	return &v
}

// Case is the run-state of a single case execution. A fresh Case is built for
// every execution, so nothing carries over between cases.
type Case struct {
	Name          string
	Description   string
	TimeLimit     time.Duration
	PassThreshold float64
	SkipSetup     bool
	SkipTeardown  bool

	suite        *Suite
	checksTotal  int
	checksPassed int
	checks       []domain.CheckResult
}

func newCase(s *Suite, d CaseDescriptor) *Case {
	c := &Case{
		Name:          d.Name,
		Description:   d.Description,
		TimeLimit:     s.opts.CaseTimeLimit.Std(),
		PassThreshold: s.opts.CasePassThreshold,
		SkipSetup:     d.SkipSetup,
		SkipTeardown:  d.SkipTeardown,
		suite:         s,
	}
	switch {
	case d.TimeLimit == NoTimeLimit:
		c.TimeLimit = 0
	case d.TimeLimit > 0:
		c.TimeLimit = d.TimeLimit
	}
	if d.PassThreshold != nil {
		c.PassThreshold = *d.PassThreshold
	}
	return c
}

// Suite returns the name of the suite the case belongs to.
func (c *Case) Suite() string { return c.suite.Name() }

// ChecksTotal returns the number of checks issued so far.
func (c *Case) ChecksTotal() int { return c.checksTotal }

// ChecksPassed returns the number of passed checks so far.
func (c *Case) ChecksPassed() int { return c.checksPassed }

// Percentage returns the share of passed checks, 100 when none were issued.
func (c *Case) Percentage() float64 {
	if c.checksTotal == 0 {
		return 100
	}
	return float64(c.checksPassed) * 100 / float64(c.checksTotal)
}

// Command returns a command for path preloaded with the suite's echo, log,
// environment, directory and poll settings.
func (c *Case) Command(path string, args ...string) execution.Command {
	return c.suite.command(path, args...)
}

// CheckExit runs path with args using the suite defaults and passes when it
// exits with expected.
func (c *Case) CheckExit(ctx context.Context, path string, args []string, expected int) bool {
	return c.Check(ctx, c.Command(path, args...), expected)
}

// Check runs cmd and passes when it completes with the expected exit code.
// Runner failures are recorded as a failed check and never returned.
func (c *Case) Check(ctx context.Context, cmd execution.Command, expected int) bool {
	result := domain.CheckResult{
		Label:    cmd.String(),
		Expected: expected,
		ExitCode: execution.ExitNotStarted,
	}

	if err := c.suite.prepareLogs(cmd.StdoutLog, cmd.StderrLog); err != nil {
		c.suite.reporter.Error(c.suite.Name(), c.Name, err)
	}

	res, err := c.suite.executor.Run(ctx, cmd)
	if res != nil {
		result.ExitCode = res.ExitCode
		result.Elapsed = res.Elapsed
		result.Stdout = tail(res.Stdout, maxCapturedOutput)
		result.Stderr = tail(res.Stderr, maxCapturedOutput)
	}
	if err != nil {
		result.Error = fmt.Sprintf("[%s] %v", execution.Kind(err), err)
	} else {
		result.Passed = result.ExitCode == expected
	}

	c.record(result)
	return result.Passed
}

func (c *Case) record(result domain.CheckResult) {
	c.checksTotal++
	if result.Passed {
		c.checksPassed++
	}
	c.checks = append(c.checks, result)
	c.suite.reporter.CheckFinished(c, result)
}

// checkTimeLimit records the case time limit as one more check.
func (c *Case) checkTimeLimit(elapsed time.Duration) {
	if c.TimeLimit <= 0 {
		return
	}
	c.record(domain.CheckResult{
		Label:     fmt.Sprintf("case time limit %.4fs", c.TimeLimit.Seconds()),
		Passed:    elapsed <= c.TimeLimit,
		Elapsed:   elapsed,
		TimeLimit: true,
	})
}

func (c *Case) result(elapsed time.Duration, err error) domain.CaseResult {
	res := domain.CaseResult{
		Name:          c.Name,
		Description:   c.Description,
		ChecksTotal:   c.checksTotal,
		ChecksPassed:  c.checksPassed,
		PassThreshold: c.PassThreshold,
		Elapsed:       elapsed,
		Checks:        c.checks,
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Passed = c.checksTotal == 0 || c.Percentage() >= c.PassThreshold
	return res
}

// run executes the case between its fixture hooks. Errors and panics from any of
// the three steps fail the case and stay here.
func (c *Case) run(ctx context.Context, d CaseDescriptor, fn CaseFunc) domain.CaseResult {
	var (
		errs    []error
		elapsed time.Duration
		setupOK = true
	)

	if d.Fixture != nil && d.Fixture.Setup != nil && !c.SkipSetup {
		if err := protect(func() error { return d.Fixture.Setup(ctx) }); err != nil {
			errs = append(errs, fmt.Errorf("setup: %w", err))
			setupOK = false
		}
	}

	if setupOK && fn != nil {
		start := time.Now()
		if err := protect(func() error { return fn(ctx, c) }); err != nil {
			errs = append(errs, err)
		}
		elapsed = time.Since(start)
		c.checkTimeLimit(elapsed)
	}

	if d.Fixture != nil && d.Fixture.Teardown != nil && !c.SkipTeardown {
		if err := protect(func() error { return d.Fixture.Teardown(ctx) }); err != nil {
			errs = append(errs, fmt.Errorf("teardown: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		c.suite.reporter.Error(c.suite.Name(), c.Name, err)
	}
	return c.result(elapsed, err)
}

// protect converts a panic in fn into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
