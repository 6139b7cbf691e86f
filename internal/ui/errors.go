package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"ept/internal/domain"
	"ept/internal/storage"
)

// FailureViewer displays the failures of the last run in an interactive TUI
type FailureViewer struct {
	storage storage.Storage
}

// NewFailureViewer creates a new FailureViewer
func NewFailureViewer(st storage.Storage) *FailureViewer {
	return &FailureViewer{storage: st}
}

// View displays the failures of report. Toggling a failure as resolved is saved
// back to storage right away.
func (fv *FailureViewer) View(report *domain.RunReport) error {
	if len(report.Details) == 0 {
		color.Green("✓ No failures found!")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i := range report.Details {
		list.AddItem(listItemText(report.Details[i], i), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	// List on the left (1/3), details on the right (2/3)
	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(" Failures of run %s (%d total, %d unresolved) | ↑↓ navigate, [yellow]R[white] mark resolved, → details, ← back, Ctrl+C exit ",
			report.Meta.RunID, len(report.Details), countUnresolved(report.Details)))
	}

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(report.Details) {
			return
		}
		failure := report.Details[index]
		statsView.SetText(formatFailureStats(failure))
		detailsView.SetText(formatFailureDetails(failure))
	}

	var saveErr error
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(report.Details) {
					report.Details[index].Resolved = !report.Details[index].Resolved
					list.SetItemText(index, listItemText(report.Details[index], index), "")
					updateHeader()
					updateDetails()
					if err := fv.storage.SaveOutput(report); err != nil {
						saveErr = err
						app.Stop()
					}
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})

	updateHeader()
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if saveErr != nil {
		return fmt.Errorf("failed to save resolved status: %w", saveErr)
	}
	return nil
}

func countUnresolved(failures []domain.Failure) int {
	count := 0
	for _, f := range failures {
		if !f.Resolved {
			count++
		}
	}
	return count
}

func failureTitle(f domain.Failure) string {
	parts := []string{f.Suite}
	if f.Case != "" {
		parts = append(parts, f.Case)
	}
	if f.Check != "" {
		parts = append(parts, f.Check)
	}
	return strings.Join(parts, " › ")
}

func listItemText(f domain.Failure, index int) string {
	if f.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, tview.Escape(failureTitle(f)))
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, tview.Escape(failureTitle(f)))
}

// formatFailureDetails formats a failure using tview color tags
func formatFailureDetails(f domain.Failure) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ %s[white]\n\n", tview.Escape(failureTitle(f)))
	if f.Check != "" && !strings.Contains(f.Message, "time limit") && !strings.HasPrefix(f.Message, "[") {
		fmt.Fprintf(&b, "[cyan]Exit code:[white] %d (expected %d)\n\n", f.ExitCode, f.Expected)
	}
	if f.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n\n", tview.Escape(f.Message))
	}
	if f.Stdout != "" {
		fmt.Fprintf(&b, "[yellow]Stdout:[white]\n%s\n\n", tview.Escape(f.Stdout))
	}
	if f.Stderr != "" {
		fmt.Fprintf(&b, "[yellow]Stderr:[white]\n%s\n", tview.Escape(f.Stderr))
	}
	return b.String()
}

// formatFailureStats formats the header line of a failure
func formatFailureStats(f domain.Failure) string {
	testCase := f.Case
	if testCase == "" {
		testCase = "(suite)"
	}
	status := "[red]unresolved[white]"
	if f.Resolved {
		status = "[green]resolved[white]"
	}
	return fmt.Sprintf("[cyan]suite:[white] [yellow]%s[white]::[yellow]%s[white]  %s\n",
		tview.Escape(f.Suite), tview.Escape(testCase), status)
}
