package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"

	"ept/internal/config"
	"ept/internal/domain"
)

// Formatter prints suite listings and report summaries
type Formatter struct {
	config *config.Config
	out    io.Writer

	cyan   *color.Color
	yellow *color.Color
	red    *color.Color
	green  *color.Color
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(cfg *config.Config, out io.Writer) *Formatter {
	return &Formatter{
		config: cfg,
		out:    out,
		cyan:   color.New(color.FgCyan),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		green:  color.New(color.FgGreen),
	}
}

func (f *Formatter) println(c *color.Color, format string, args ...any) {
	c.Fprintf(f.out, format, args...)
	fmt.Fprintln(f.out)
}

// PrintReportSummary prints the meta of a saved report followed by a tree of
// its failures.
func (f *Formatter) PrintReportSummary(report *domain.RunReport) {
	meta := report.Meta
	f.println(f.cyan, "Run %s at %s", meta.RunID, meta.Timestamp)
	RenderTotals(f.out, domain.Totals{
		SuitesTotal:  meta.TotalSuites,
		SuitesPassed: meta.PassedSuites,
		CasesTotal:   meta.TotalCases,
		CasesPassed:  meta.PassedCases,
		ChecksTotal:  meta.TotalChecks,
		ChecksPassed: meta.PassedChecks,
		Elapsed:      time.Duration(meta.DurationSeconds * float64(time.Second)),
		OK:           meta.OK,
	})

	if len(report.Details) == 0 {
		f.println(f.green, "✓ All suites passed!")
		return
	}
	f.println(f.red, "✗ %d failure(s)", len(report.Details))
	f.printFailureTree(report.Details)
}

// printFailureTree prints failures grouped by suite, then case
func (f *Formatter) printFailureTree(failures []domain.Failure) {
	bySuite := make(map[string]map[string][]domain.Failure)
	for _, failure := range failures {
		if bySuite[failure.Suite] == nil {
			bySuite[failure.Suite] = make(map[string][]domain.Failure)
		}
		bySuite[failure.Suite][failure.Case] = append(bySuite[failure.Suite][failure.Case], failure)
	}

	suites := sortedKeys(bySuite)
	for i, suite := range suites {
		lastSuite := i == len(suites)-1
		f.println(f.cyan, "%s%s", branch(lastSuite), suite)

		cases := sortedKeys(bySuite[suite])
		for j, name := range cases {
			lastCase := j == len(cases)-1
			prefix := indent(lastSuite)
			if name != "" {
				f.println(f.yellow, "%s%s%s", prefix, branch(lastCase), name)
				prefix += indent(lastCase)
			}
			checks := bySuite[suite][name]
			for k, failure := range checks {
				label := failure.Message
				if failure.Check != "" {
					label = failure.Check + ": " + failure.Message
				}
				connector := branch(k == len(checks)-1)
				if name == "" {
					connector = branch(lastCase && k == len(checks)-1)
				}
				f.println(f.red, "%s%s%s", prefix, connector, label)
			}
		}
	}
}

// PrintSuiteList prints the discovered suite files, optionally with their cases
// in execution order. Suites named in failed are marked with [F] (from the last run).
func (f *Formatter) PrintSuiteList(suites []domain.SuiteFile, showCases bool, failed map[string]struct{}) {
	if showCases {
		f.println(f.green, "Found %d suite(s) with cases:\n", len(suites))
	} else {
		f.println(f.green, "Found %d suite(s):\n", len(suites))
	}

	for i, suite := range suites {
		relPath, err := filepath.Rel(f.config.ProjectPath, suite.Path)
		if err != nil {
			relPath = suite.Path
		}

		failMarker := ""
		if _, ok := failed[suite.Name]; ok {
			failMarker = " " + f.red.Sprint("[F]")
		}

		isLast := i == len(suites)-1
		f.println(f.cyan, "%s%s (%s)%s", branch(isLast), suite.Name, relPath, failMarker)
		if !showCases {
			continue
		}

		if len(suite.Cases) == 0 {
			fmt.Fprintf(f.out, "%s%s\n", indent(isLast)+branch(true), f.red.Sprint("(no cases found)"))
		}
		for j, name := range suite.Cases {
			fmt.Fprintf(f.out, "%s%s\n", indent(isLast)+branch(j == len(suite.Cases)-1), f.yellow.Sprint(name))
		}
		if !isLast {
			fmt.Fprintln(f.out)
		}
	}
}

// FailedSuites returns the names of suites with failures in report.
func FailedSuites(report *domain.RunReport) map[string]struct{} {
	failed := make(map[string]struct{})
	if report == nil {
		return failed
	}
	for _, rec := range report.Suites {
		if !rec.Passed {
			failed[rec.Name] = struct{}{}
		}
	}
	return failed
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func indent(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
