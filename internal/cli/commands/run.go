package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ept/internal/config"
	"ept/internal/discovery"
	"ept/internal/domain"
	"ept/internal/execution"
	"ept/internal/harness"
	"ept/internal/storage"
	"ept/internal/ui"
)

// ErrRunFailed is returned when the run finished but was not OK.
var ErrRunFailed = errors.New("run not OK")

// RunCommand handles the run command
type RunCommand struct {
	config  *config.Config
	finder  *suiteFinder
	parser  *discovery.Parser
	storage storage.Storage
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, finder *suiteFinder, parser *discovery.Parser, st storage.Storage) *RunCommand {
	return &RunCommand{
		config:  cfg,
		finder:  finder,
		parser:  parser,
		storage: st,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	suites, err := rc.finder.find()
	if err != nil {
		return err
	}
	if len(suites) == 0 {
		color.Yellow("No suites to execute")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		echoOut  io.Writer = os.Stdout
		echoErr  io.Writer = os.Stderr
		reporter harness.Reporter
	)
	console := ui.NewConsole(os.Stdout, os.Stderr)
	reporter = console

	var caseCount int
	for _, s := range suites {
		caseCount += len(s.Cases)
	}
	if rc.config.Flags.Progress {
		// Child output and per-check lines would break the bar
		echoOut, echoErr = nil, nil
		reporter = ui.NewProgressBar(caseCount, os.Stderr, console)
	}

	runner := execution.NewRunner(echoOut, echoErr, rc.logger())
	registry := harness.NewRegistry(runner, reporter)
	for _, sf := range suites {
		def, err := rc.parser.Parse(sf.Path)
		if err != nil {
			return err
		}
		suite, err := harness.BuildSuite(def, filepath.Dir(sf.Path))
		if err != nil {
			return fmt.Errorf("%s: %w", sf.Path, err)
		}
		if err := registry.Register(suite); err != nil {
			return fmt.Errorf("%s: %w", sf.Path, err)
		}
	}

	runID := uuid.NewString()
	totals := registry.RunAll(ctx)

	report := storage.NewReport(runID, totals, registry.Records())
	if err := rc.storage.SaveOutput(report); err != nil {
		return err
	}
	color.Cyan("Results saved to %s (run %s)", rc.config.GetOutputPath(), runID)

	if rc.config.Flags.History {
		if err := rc.recordHistory(ctx, report); err != nil {
			color.Red("Failed to record run history: %v", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	if !totals.OK {
		return ErrRunFailed
	}
	return nil
}

func (rc *RunCommand) recordHistory(ctx context.Context, report *domain.RunReport) error {
	history, err := storage.OpenMySQLHistory(ctx, rc.config.GetDatabaseSettings(), rc.config.HistoryTable)
	if err != nil {
		return err
	}
	defer history.Close()
	return history.Record(ctx, report)
}

func (rc *RunCommand) logger() *slog.Logger {
	if !rc.config.Flags.Verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
