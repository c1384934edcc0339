// Package main provides the styler CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/styler-dev/styler/cmd/styler/commands"
	"github.com/styler-dev/styler/pkg/version"
)

var (
	cfgFile string //nolint:gochecknoglobals // CLI flag variable
	verbose bool   //nolint:gochecknoglobals // CLI flag variable
	quiet   bool   //nolint:gochecknoglobals // CLI flag variable
	machine bool   //nolint:gochecknoglobals // CLI flag variable
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "styler",
		Short: "A rule-based formatter for C-family source code",
		Long: `styler parses C-family source files into an arena-backed AST, runs a
configurable set of formatting rules over them, and either reports
violations (check) or rewrites the files in place (format).`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .styler.toml/.styler.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&machine, "machine", false, "emit machine-readable (JSON) diagnostics")

	rootCmd.AddCommand(commands.FormatCmd(&commands.GlobalFlags{ConfigPath: &cfgFile, Quiet: &quiet, Machine: &machine}))
	rootCmd.AddCommand(commands.CheckCmd(&commands.GlobalFlags{ConfigPath: &cfgFile, Quiet: &quiet, Machine: &machine}))
	rootCmd.AddCommand(commands.MCPCmd(&commands.GlobalFlags{ConfigPath: &cfgFile, Quiet: &quiet, Machine: &machine}))
	rootCmd.AddCommand(commands.ReportCmd(&commands.GlobalFlags{ConfigPath: &cfgFile, Quiet: &quiet, Machine: &machine}))
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(commands.ExitInternalError)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "styler %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}

	return cmd
}
