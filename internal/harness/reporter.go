package harness

import (
	"ept/internal/config"
	"ept/internal/domain"
)

// Reporter receives progress of a run as it happens. Implementations only
// present values; they never influence verdicts.
type Reporter interface {
	SuiteStarted(opts config.SuiteOptions)
	CaseStarted(c *Case)
	CheckFinished(c *Case, check domain.CheckResult)
	CaseFinished(suite string, result domain.CaseResult)
	SuiteFinished(record domain.SuiteRecord)
	Error(suite, scope string, err error)
	RunFinished(totals domain.Totals, records []domain.SuiteRecord)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) SuiteStarted(config.SuiteOptions) {}
func (NopReporter) CaseStarted(*Case) {}
func (NopReporter) CheckFinished(*Case, domain.CheckResult) {}
func (NopReporter) CaseFinished(string, domain.CaseResult) {}
func (NopReporter) SuiteFinished(domain.SuiteRecord) {}
func (NopReporter) Error(string, string, error) {}
func (NopReporter) RunFinished(domain.Totals, []domain.SuiteRecord) {}
