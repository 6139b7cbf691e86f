package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"ept/internal/config"
	"ept/internal/domain"
	"ept/internal/execution"
)

// Reserved case names, kept for the suite-level hooks.
const (
	reservedSetup    = "setup"
	reservedTeardown = "teardown"
)

var (
	// ErrDuplicateCase is returned when a case name is registered twice in a suite.
	ErrDuplicateCase = errors.New("duplicate case name")
	// ErrReservedCaseName is returned for cases named setup or teardown.
	ErrReservedCaseName = errors.New("reserved case name")
	// ErrEmptyCaseName is returned for cases without a name.
	ErrEmptyCaseName = errors.New("case name is required")
)

type caseEntry struct {
	desc CaseDescriptor
	fn   CaseFunc
}

// Suite is a named group of cases sharing hooks, thresholds and time limits.
// Cases always run in lexicographic order of their names.
type Suite struct {
	opts     config.SuiteOptions
	env      []string
	setup    HookFunc
	teardown HookFunc
	cases    map[string]caseEntry

	// Bound by the registry.
	executor execution.Executor
	reporter Reporter
	logs     *LogFiles
}

// NewSuite validates opts and returns an empty suite.
func NewSuite(opts config.SuiteOptions) (*Suite, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("suite %q: %w", opts.Name, err)
	}
	return &Suite{
		opts:     opts,
		cases:    make(map[string]caseEntry),
		executor: execution.NewRunner(os.Stdout, os.Stderr, nil),
		reporter: NopReporter{},
		logs:     NewLogFiles(),
	}, nil
}

// Name returns the suite name.
func (s *Suite) Name() string { return s.opts.Name }

// Options returns the options the suite was built with.
func (s *Suite) Options() config.SuiteOptions { return s.opts }

// SetEnv sets the KEY=VALUE entries added to the environment of every command.
func (s *Suite) SetEnv(env []string) { s.env = env }

// SetSetup sets the hook run once before the first case.
func (s *Suite) SetSetup(fn HookFunc) { s.setup = fn }

// SetTeardown sets the hook run once after the last case, whatever the outcome.
func (s *Suite) SetTeardown(fn HookFunc) { s.teardown = fn }

// AddCase registers a case body under desc.Name.
func (s *Suite) AddCase(desc CaseDescriptor, fn CaseFunc) error {
	switch {
	case desc.Name == "":
		return ErrEmptyCaseName
	case desc.Name == reservedSetup || desc.Name == reservedTeardown:
		return fmt.Errorf("%w: %s", ErrReservedCaseName, desc.Name)
	}
	if _, ok := s.cases[desc.Name]; ok {
		return fmt.Errorf("%w: %s in suite %s", ErrDuplicateCase, desc.Name, s.Name())
	}
	if desc.PassThreshold != nil && (*desc.PassThreshold < 0 || *desc.PassThreshold > 100) {
		return fmt.Errorf("case %s: pass threshold must be between 0 and 100", desc.Name)
	}
	s.cases[desc.Name] = caseEntry{desc: desc, fn: fn}
	return nil
}

// CaseNames returns the case names in execution order.
func (s *Suite) CaseNames() []string {
	names := make([]string, 0, len(s.cases))
	for name := range s.cases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunCommand runs a hook command with the suite defaults. A non-zero exit or a
// runner failure is returned as an error.
func (s *Suite) RunCommand(ctx context.Context, cmd execution.Command) error {
	if err := s.prepareLogs(cmd.StdoutLog, cmd.StderrLog); err != nil {
		return err
	}
	res, err := s.executor.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%s exited with code %d", cmd, res.ExitCode)
	}
	return nil
}

func (s *Suite) command(path string, args ...string) execution.Command {
	return execution.Command{
		Path:         path,
		Args:         args,
		EchoOutput:   s.opts.EchoOutput,
		StdoutLog:    s.opts.LogPaths.Stdout,
		StderrLog:    s.opts.LogPaths.Stderr,
		PollInterval: s.opts.PollInterval.Std(),
		Env:          s.env,
		Dir:          s.opts.Dir,
	}
}

func (s *Suite) prepareLogs(paths ...string) error {
	if !s.opts.TruncateLogs {
		return nil
	}
	return s.logs.Prepare(paths...)
}

// run executes the suite and returns its fresh record.
func (s *Suite) run(ctx context.Context) domain.SuiteRecord {
	rec := domain.SuiteRecord{
		Name:          s.opts.Name,
		Description:   s.opts.Description,
		HasRun:        true,
		PassThreshold: s.opts.PassThreshold,
		TimeLimit:     s.opts.TimeLimit.Std(),
		TimeLimitMet:  true,
	}
	var errs []error

	if err := s.prepareLogs(s.opts.LogPaths.Stdout, s.opts.LogPaths.Stderr); err != nil {
		s.reporter.Error(s.Name(), reservedSetup, err)
	}
	s.reporter.SuiteStarted(s.opts)

	var setupErr error
	if s.setup != nil {
		if setupErr = protect(func() error { return s.setup(ctx) }); setupErr != nil {
			setupErr = fmt.Errorf("setup: %w", setupErr)
			s.reporter.Error(s.Name(), reservedSetup, setupErr)
			errs = append(errs, setupErr)
		}
	}

	start := time.Now()
	for _, name := range s.CaseNames() {
		entry := s.cases[name]
		var res domain.CaseResult
		switch {
		case setupErr != nil:
			res = s.skipped(entry.desc, "suite setup failed")
		case ctx.Err() != nil:
			res = s.skipped(entry.desc, ctx.Err().Error())
		default:
			c := newCase(s, entry.desc)
			s.reporter.CaseStarted(c)
			res = c.run(ctx, entry.desc, entry.fn)
		}
		s.reporter.CaseFinished(s.Name(), res)

		rec.Cases = append(rec.Cases, res)
		rec.CasesTotal++
		if res.Passed {
			rec.CasesPassed++
		}
		rec.ChecksTotal += res.ChecksTotal
		rec.ChecksPassed += res.ChecksPassed
	}
	rec.Elapsed = time.Since(start)

	if s.teardown != nil {
		if err := protect(func() error { return s.teardown(ctx) }); err != nil {
			err = fmt.Errorf("teardown: %w", err)
			s.reporter.Error(s.Name(), reservedTeardown, err)
			errs = append(errs, err)
		}
	}

	if rec.TimeLimit > 0 {
		rec.ChecksTotal++
		if rec.Elapsed <= rec.TimeLimit {
			rec.ChecksPassed++
		} else {
			rec.TimeLimitMet = false
		}
	}

	if err := errors.Join(errs...); err != nil {
		rec.Error = err.Error()
	}
	rec.Passed = rec.Error == "" && rec.TimeLimitMet && rec.CasePercentage() >= rec.PassThreshold
	s.reporter.SuiteFinished(rec)
	return rec
}

func (s *Suite) skipped(d CaseDescriptor, reason string) domain.CaseResult {
	c := newCase(s, d)
	return domain.CaseResult{
		Name:          c.Name,
		Description:   c.Description,
		PassThreshold: c.PassThreshold,
		Error:         reason,
	}
}
