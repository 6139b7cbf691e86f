package commands

import (
	"errors"
	"io/fs"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ept/internal/config"
	"ept/internal/storage"
	"ept/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	finder    *suiteFinder
	storage   storage.Storage
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, finder *suiteFinder, st storage.Storage, formatter *ui.Formatter) *ListCommand {
	return &ListCommand{
		config:    cfg,
		finder:    finder,
		storage:   st,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	suites, err := lc.finder.find()
	if err != nil {
		return err
	}
	if len(suites) == 0 {
		color.Yellow("No suites found")
		return nil
	}

	// Mark suites that failed in the last run, if there is one
	var failed map[string]struct{}
	if report, err := lc.storage.Load(); err == nil {
		failed = ui.FailedSuites(report)
	} else if !errors.Is(err, fs.ErrNotExist) {
		color.Yellow("Ignoring last results: %v", err)
	}

	lc.formatter.PrintSuiteList(suites, lc.config.Flags.ShowCases, failed)
	return nil
}
