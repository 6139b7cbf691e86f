package main

import (
	"errors"
	"fmt"
	"os"

	"ept/internal/cli"
	"ept/internal/cli/commands"
	"ept/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "ept",
		Short:         "External program test harness",
		Long:          `Runs suites of checks against external programs: each check launches a command, compares its exit code with the expected one and rolls the result up into case, suite and run totals.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, commands.ErrRunFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
