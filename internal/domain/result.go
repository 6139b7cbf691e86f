package domain

import "time"

// CheckResult is the outcome of a single check issued by a case.
type CheckResult struct {
	Label     string        `json:"label"`                // Command line or limit description
	Expected  int           `json:"expected"`             // Expected exit code (unused for time-limit checks)
	ExitCode  int           `json:"exit_code"`            // Observed exit code or an execution sentinel
	Passed    bool          `json:"passed"`               // Whether the check counted as passed
	Elapsed   time.Duration `json:"elapsed"`              // Spawn-to-exit time
	Error     string        `json:"error,omitempty"`      // Runner failure, if any
	Stdout    string        `json:"stdout,omitempty"`     // Captured stdout
	Stderr    string        `json:"stderr,omitempty"`     // Captured stderr
	TimeLimit bool          `json:"time_limit,omitempty"` // Set for case/suite time-limit checks
}

// CaseResult is the outcome of one test case execution.
type CaseResult struct {
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	ChecksTotal   int           `json:"checks_total"`
	ChecksPassed  int           `json:"checks_passed"`
	PassThreshold float64       `json:"pass_threshold"`
	Elapsed       time.Duration `json:"elapsed"`
	Passed        bool          `json:"passed"`
	Error         string        `json:"error,omitempty"` // Body, fixture or panic error
	Checks        []CheckResult `json:"checks,omitempty"`
}

// Percentage returns the share of passed checks. A case without checks is at 100%.
func (c CaseResult) Percentage() float64 {
	return percentage(c.ChecksPassed, c.ChecksTotal)
}

// SuiteRecord is the registry entry for a suite, rewritten on every run.
type SuiteRecord struct {
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	CasesTotal    int           `json:"cases_total"`
	CasesPassed   int           `json:"cases_passed"`
	ChecksTotal   int           `json:"checks_total"`
	ChecksPassed  int           `json:"checks_passed"`
	Elapsed       time.Duration `json:"elapsed"`
	HasRun        bool          `json:"has_run"`
	PassThreshold float64       `json:"pass_threshold"`
	TimeLimit     time.Duration `json:"time_limit,omitempty"`
	TimeLimitMet  bool          `json:"time_limit_met"`
	Passed        bool          `json:"passed"`
	Error         string        `json:"error,omitempty"` // Suite setup/teardown error
	Cases         []CaseResult  `json:"cases,omitempty"`
}

// CasePercentage returns the share of passed cases. A suite without cases is at 100%.
func (s SuiteRecord) CasePercentage() float64 {
	return percentage(s.CasesPassed, s.CasesTotal)
}

// CheckPercentage returns the share of passed checks across the suite.
func (s SuiteRecord) CheckPercentage() float64 {
	return percentage(s.ChecksPassed, s.ChecksTotal)
}

// Totals aggregates every suite record that has run.
type Totals struct {
	SuitesTotal  int           `json:"suites_total"`
	SuitesPassed int           `json:"suites_passed"`
	CasesTotal   int           `json:"cases_total"`
	CasesPassed  int           `json:"cases_passed"`
	ChecksTotal  int           `json:"checks_total"`
	ChecksPassed int           `json:"checks_passed"`
	Elapsed      time.Duration `json:"elapsed"`
	OK           bool          `json:"ok"`
}

// Add folds a suite record into the totals. Records that have not run are ignored.
func (t *Totals) Add(rec SuiteRecord) {
	if !rec.HasRun {
		return
	}
	t.SuitesTotal++
	if rec.Passed {
		t.SuitesPassed++
	}
	t.CasesTotal += rec.CasesTotal
	t.CasesPassed += rec.CasesPassed
	t.ChecksTotal += rec.ChecksTotal
	t.ChecksPassed += rec.ChecksPassed
	t.Elapsed += rec.Elapsed
	t.OK = t.SuitesTotal > 0 && t.SuitesPassed == t.SuitesTotal
}

// SuitePercentage returns the share of passed suites.
func (t Totals) SuitePercentage() float64 { return percentage(t.SuitesPassed, t.SuitesTotal) }

// CasePercentage returns the share of passed cases.
func (t Totals) CasePercentage() float64 { return percentage(t.CasesPassed, t.CasesTotal) }

// CheckPercentage returns the share of passed checks.
func (t Totals) CheckPercentage() float64 { return percentage(t.ChecksPassed, t.ChecksTotal) }

func percentage(passed, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(passed) * 100 / float64(total)
}
