package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"ept/internal/domain"
	"ept/internal/harness"
)

var _ harness.Reporter = (*ProgressBar)(nil)

// ProgressBar reports case completion on a progress bar instead of the full
// console log. Errors and the final summary go to the wrapped summary reporter.
type ProgressBar struct {
	harness.NopReporter
	bar     *progressbar.ProgressBar
	summary harness.Reporter
	passed  int
	failed  int
}

// NewProgressBar creates a progress bar over count cases, drawn on w.
func NewProgressBar(count int, w io.Writer, summary harness.Reporter) *ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	if summary == nil {
		summary = harness.NopReporter{}
	}
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar, summary: summary}
}

func describe(passed, failed int) string {
	return color.CyanString("Running cases: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}

// Update updates the progress bar with pass and failure counts
func (p *ProgressBar) Update(passed, failed int) {
	p.bar.Set(passed + failed)
	p.bar.Describe(describe(passed, failed))
}

func (p *ProgressBar) CaseFinished(_ string, res domain.CaseResult) {
	if res.Passed {
		p.passed++
	} else {
		p.failed++
	}
	p.Update(p.passed, p.failed)
}

func (p *ProgressBar) Error(suite, scope string, err error) {
	p.summary.Error(suite, scope, err)
}

func (p *ProgressBar) RunFinished(totals domain.Totals, records []domain.SuiteRecord) {
	p.Finish()
	p.summary.RunFinished(totals, records)
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}
