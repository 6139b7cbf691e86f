package commands

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ept/internal/config"
	"ept/internal/storage"
	"ept/internal/ui"
)

// HistoryCommand handles the history command
type HistoryCommand struct {
	config *config.Config
}

// NewHistoryCommand creates a new HistoryCommand
func NewHistoryCommand(cfg *config.Config) *HistoryCommand {
	return &HistoryCommand{config: cfg}
}

// Execute runs the command
func (hc *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	history, err := storage.OpenMySQLHistory(ctx, hc.config.GetDatabaseSettings(), hc.config.HistoryTable)
	if err != nil {
		return err
	}
	defer history.Close()

	entries, err := history.Recent(ctx, hc.config.Flags.HistoryLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		color.Yellow("No runs recorded yet")
		return nil
	}

	ui.RenderHistory(os.Stdout, entries)
	return nil
}
