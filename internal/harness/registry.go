package harness

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ept/internal/domain"
	"ept/internal/execution"
)

var (
	// ErrDuplicateSuite is returned when a suite name is registered twice.
	ErrDuplicateSuite = errors.New("duplicate suite name")
	// ErrUnknownSuite is returned when running a suite that was never registered.
	ErrUnknownSuite = errors.New("unknown suite")
)

// Registry owns the suites of a run and their latest records.
type Registry struct {
	executor execution.Executor
	reporter Reporter
	logs     *LogFiles
	suites   []*Suite
	records  map[string]domain.SuiteRecord
}

// NewRegistry creates an empty registry. A nil executor runs commands with
// output echoed to the process streams; a nil reporter discards progress.
func NewRegistry(executor execution.Executor, reporter Reporter) *Registry {
	if executor == nil {
		executor = execution.NewRunner(os.Stdout, os.Stderr, nil)
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Registry{
		executor: executor,
		reporter: reporter,
		logs:     NewLogFiles(),
		records:  make(map[string]domain.SuiteRecord),
	}
}

// Register adds s under its name. A name already taken is a configuration error
// and leaves the existing record untouched.
func (r *Registry) Register(s *Suite) error {
	if _, ok := r.records[s.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSuite, s.Name())
	}
	s.executor = r.executor
	s.reporter = r.reporter
	s.logs = r.logs
	r.suites = append(r.suites, s)
	r.records[s.Name()] = pendingRecord(s)
	return nil
}

// Run runs a single registered suite and stores its record.
func (r *Registry) Run(ctx context.Context, name string) (domain.SuiteRecord, error) {
	for _, s := range r.suites {
		if s.Name() == name {
			rec := s.run(ctx)
			r.records[name] = rec
			return rec, nil
		}
	}
	return domain.SuiteRecord{}, fmt.Errorf("%w: %s", ErrUnknownSuite, name)
}

// RunAll resets the registry, runs every suite in registration order and reports
// the totals. Running it again recomputes the same totals from fresh records.
func (r *Registry) RunAll(ctx context.Context) domain.Totals {
	r.Reset()
	for _, s := range r.suites {
		r.records[s.Name()] = s.run(ctx)
	}

	totals := r.Totals()
	r.reporter.RunFinished(totals, r.Records())
	return totals
}

// Totals aggregates the records of every suite that has run.
func (r *Registry) Totals() domain.Totals {
	var t domain.Totals
	for _, rec := range r.Records() {
		t.Add(rec)
	}
	return t
}

// Records returns the suite records in registration order.
func (r *Registry) Records() []domain.SuiteRecord {
	out := make([]domain.SuiteRecord, 0, len(r.suites))
	for _, s := range r.suites {
		out = append(out, r.records[s.Name()])
	}
	return out
}

// Reset returns every record to its not-run state and forgets which log files
// were truncated.
func (r *Registry) Reset() {
	for _, s := range r.suites {
		r.records[s.Name()] = pendingRecord(s)
	}
	r.logs.Reset()
}

func pendingRecord(s *Suite) domain.SuiteRecord {
	return domain.SuiteRecord{
		Name:          s.Name(),
		Description:   s.opts.Description,
		PassThreshold: s.opts.PassThreshold,
		TimeLimit:     s.opts.TimeLimit.Std(),
	}
}
