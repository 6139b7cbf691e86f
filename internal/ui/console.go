package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"ept/internal/config"
	"ept/internal/domain"
	"ept/internal/execution"
	"ept/internal/harness"
)

const ruleWidth = 100

var _ harness.Reporter = (*Console)(nil)

// Console prints the progress of a run as line-oriented colored text.
type Console struct {
	out    io.Writer
	errOut io.Writer
	suite  config.SuiteOptions

	header  *color.Color
	passed  *color.Color
	failed  *color.Color
	errText *color.Color
}

// NewConsole creates a console reporter writing to out, and errors to errOut.
func NewConsole(out, errOut io.Writer) *Console {
	return &Console{
		out:     out,
		errOut:  errOut,
		header:  color.New(color.FgCyan, color.Bold),
		passed:  color.New(color.BgGreen, color.FgBlack),
		failed:  color.New(color.BgRed, color.FgWhite),
		errText: color.New(color.FgRed),
	}
}

// log prints one line and mirrors it into the suite's log files when
// log_framework_output is set.
func (c *Console) log(line string, isErr bool, col *color.Color) {
	w := c.out
	if isErr {
		w = c.errOut
	}
	if col != nil {
		col.Fprint(w, line)
		fmt.Fprintln(w)
	} else {
		fmt.Fprintln(w, line)
	}

	if !c.suite.LogFrameworkOutput {
		return
	}
	path := c.suite.LogPaths.Stdout
	if isErr {
		path = c.suite.LogPaths.Stderr
	}
	if path != "" {
		// Mirroring is best effort; the line is already on the console
		_ = execution.AppendFile(path, line+"\n")
	}
}

func (c *Console) rule(ch string) {
	c.log(strings.Repeat(ch, ruleWidth), false, nil)
}

func (c *Console) SuiteStarted(opts config.SuiteOptions) {
	c.suite = opts
	c.rule("=")
	c.log("TEST SUITE: "+opts.Name, false, c.header)
	if opts.Description != "" {
		c.log("Description: "+opts.Description, false, nil)
	}
}

func (c *Console) CaseStarted(tc *harness.Case) {
	c.rule("-")
	c.log("CASE: "+tc.Name, false, c.header)
	if tc.Description != "" {
		c.log("Description: "+tc.Description, false, nil)
	}
	c.rule("-")
}

func (c *Console) CheckFinished(tc *harness.Case, chk domain.CheckResult) {
	if chk.TimeLimit {
		if chk.Passed {
			c.log(fmt.Sprintf("CHECK PASS: test completed before time limit of %.4f", tc.TimeLimit.Seconds()), false, c.passed)
		} else {
			c.log(fmt.Sprintf("CHECK FAIL: test did not complete before time limit of %.4f", tc.TimeLimit.Seconds()), true, c.failed)
		}
		return
	}

	if chk.Error != "" {
		c.log(chk.Error, true, c.errText)
		c.log("CHECK FAIL: "+chk.Label, true, c.failed)
		return
	}
	if chk.Passed {
		c.log("CHECK PASS: "+chk.Label, false, c.passed)
	} else {
		c.log(fmt.Sprintf("CHECK FAIL: %s returned %d, expected %d", chk.Label, chk.ExitCode, chk.Expected), true, c.failed)
	}
	c.log(fmt.Sprintf("%.4f seconds", chk.Elapsed.Seconds()), false, nil)
}

func (c *Console) CaseFinished(_ string, res domain.CaseResult) {
	line := fmt.Sprintf("%d/%d (%.2f%%) CHECKS in %.4f seconds", res.ChecksPassed, res.ChecksTotal, res.Percentage(), res.Elapsed.Seconds())
	if res.Passed {
		c.log(line+" TEST PASS"+thresholdNote(res.PassThreshold), false, c.passed)
		return
	}
	if res.Error != "" && res.ChecksTotal == 0 {
		c.log("["+res.Name+"] "+res.Error, true, c.errText)
	}
	c.log(line+" TEST FAIL", false, c.failed)
}

func (c *Console) SuiteFinished(rec domain.SuiteRecord) {
	if rec.TimeLimit > 0 {
		c.rule("_")
		if rec.TimeLimitMet {
			c.log(fmt.Sprintf("CHECK PASS: suite completed before time limit of %.4f", rec.TimeLimit.Seconds()), false, c.passed)
		} else {
			c.log(fmt.Sprintf("CHECK FAIL: suite did not complete before time limit of %.4f", rec.TimeLimit.Seconds()), true, c.failed)
		}
	}
	c.rule("*")
	c.log("SUITE RESULT", false, c.header)
	c.rule("*")
	c.suiteLine("", rec)
	c.rule("=")
	c.suite = config.SuiteOptions{}
}

func (c *Console) Error(suite, scope string, err error) {
	c.log(fmt.Sprintf("[%s/%s] %v", suite, scope, err), true, c.errText)
}

func (c *Console) RunFinished(totals domain.Totals, records []domain.SuiteRecord) {
	c.rule("*")
	c.log("ALL SUITE RESULTS", false, c.header)
	c.rule("*")
	for _, rec := range records {
		if rec.HasRun {
			c.suiteLine(rec.Name+": ", rec)
		}
	}
	c.rule("_")
	c.log("TOTALS", false, c.header)
	RenderTotals(c.out, totals)
	if totals.OK {
		c.log("OK", false, c.passed)
	} else {
		c.log("NOT OK", false, c.failed)
	}
	c.rule(".")
}

func (c *Console) suiteLine(prefix string, rec domain.SuiteRecord) {
	line := fmt.Sprintf("%s%d/%d (%.2f%%) TESTS with %d/%d (%.2f%%) CHECKS in %.4f seconds",
		prefix, rec.CasesPassed, rec.CasesTotal, rec.CasePercentage(),
		rec.ChecksPassed, rec.ChecksTotal, rec.CheckPercentage(), rec.Elapsed.Seconds())
	if rec.Passed {
		c.log(line+" OK"+thresholdNote(rec.PassThreshold), false, c.passed)
	} else {
		c.log(line+" NOT OK", false, c.failed)
	}
}

func thresholdNote(threshold float64) string {
	if threshold == 100 {
		return ""
	}
	return fmt.Sprintf(" with %.2f%% threshold", threshold)
}
