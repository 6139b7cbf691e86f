package commands

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ept/internal/cli"
	"ept/internal/config"
	"ept/internal/discovery"
	"ept/internal/storage"
	"ept/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Failures *FailuresCommand
	History  *HistoryCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	parser := discovery.NewParser()
	finder := &suiteFinder{
		config:  cfg,
		scanner: discovery.NewScanner(cfg.PathsToIgnore, config.SuiteFileSuffixes),
		filter:  discovery.NewFilter(),
		parser:  parser,
	}
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(cfg, os.Stdout)
	failureViewer := ui.NewFailureViewer(jsonStorage)

	return &Commands{
		Run:      NewRunCommand(cfg, finder, parser, jsonStorage),
		List:     NewListCommand(cfg, finder, jsonStorage, formatter),
		Failures: NewFailuresCommand(cfg, jsonStorage, failureViewer, formatter),
		History:  NewHistoryCommand(cfg),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	// Update config with flags after parsing
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg.Flags = flags.ToConfigFlags()
		if cfg.Flags.HistoryLimit <= 0 {
			cfg.Flags.HistoryLimit = config.DefaultHistoryLimit
		}
		if cfg.Flags.NoColor {
			color.NoColor = true
		}
		return nil
	}
	rootCmd.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "Disable colored output")

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run test suites",
		Long:  "Discover suite definition files, run every suite in order and print the totals",
		RunE:  c.Run.Execute,
	}
	runCmd.Flags().StringVarP(&flags.SuitePath, "suite-path", "t", "", "Path to the folder (or file) where suite discovery should start")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter suites by name pattern (supports wildcards, e.g., 'cli*' or '*http*')")
	runCmd.Flags().BoolVar(&flags.Progress, "progress", false, "Show a progress bar instead of per-check output")
	runCmd.Flags().BoolVar(&flags.History, "history", false, "Record the run in the MySQL history table")
	runCmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log process lifecycle details to stderr")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered suites",
		Long:  "Scan and list all suite definition files without running them",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.SuitePath, "suite-path", "t", "", "Path to the folder (or file) where suite discovery should start")
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter suites by name pattern (supports wildcards, e.g., 'cli*' or '*http*')")
	listCmd.Flags().BoolVarP(&flags.ShowCases, "cases", "c", false, "List cases in execution order under each suite")
	rootCmd.AddCommand(listCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View failures of the last run",
		Long:  "Display failed checks and cases from the last run in an interactive viewer",
		RunE:  c.Failures.Execute,
	}
	failuresCmd.Flags().BoolVarP(&flags.Summary, "summary", "s", false, "Print a failure tree instead of opening the viewer")
	rootCmd.AddCommand(failuresCmd)

	// History command
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long:  "Print recent runs from the MySQL history table (EPT_DB_* settings, project .env)",
		RunE:  c.History.Execute,
	}
	historyCmd.Flags().IntVarP(&flags.HistoryLimit, "limit", "n", config.DefaultHistoryLimit, "Number of rows to show")
	rootCmd.AddCommand(historyCmd)
}
