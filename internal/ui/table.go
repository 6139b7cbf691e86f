package ui

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ept/internal/domain"
)

// RenderTotals writes the cross-suite totals as a table.
func RenderTotals(w io.Writer, totals domain.Totals) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Totals (%.4f seconds)", totals.Elapsed.Seconds()))
	t.AppendHeader(table.Row{"Level", "Passed", "Total", "Percent"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Total", Align: text.AlignRight},
		{Name: "Percent", Align: text.AlignRight},
	})

	t.AppendRow(table.Row{"SUITES", totals.SuitesPassed, totals.SuitesTotal, percent(totals.SuitePercentage())})
	t.AppendRow(table.Row{"TESTS", totals.CasesPassed, totals.CasesTotal, percent(totals.CasePercentage())})
	t.AppendRow(table.Row{"CHECKS", totals.ChecksPassed, totals.ChecksTotal, percent(totals.CheckPercentage())})

	if totals.OK {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}
	t.Render()
}

// RenderHistory writes recorded runs, newest first.
func RenderHistory(w io.Writer, entries []domain.HistoryEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Run History")
	t.AppendHeader(table.Row{"Run", "Suite", "Tests", "Checks", "Seconds", "Status", "Recorded"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Run", AutoMerge: true},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Checks", Align: text.AlignRight},
		{Name: "Seconds", Align: text.AlignRight},
	})

	for _, e := range entries {
		status := "NOT OK"
		if e.Passed {
			status = "OK"
		}
		t.AppendRow(table.Row{
			e.RunID,
			e.Suite,
			fmt.Sprintf("%d/%d", e.CasesPassed, e.CasesTotal),
			fmt.Sprintf("%d/%d", e.ChecksPassed, e.ChecksTotal),
			fmt.Sprintf("%.4f", e.Seconds),
			status,
			e.RecordedAt,
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
