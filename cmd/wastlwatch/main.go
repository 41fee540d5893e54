// Package main is the entry point for the wastlwatch CLI.
//
// wastlwatch can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	wastlwatch serve -c config.yaml    # Start the dashboard
//	wastlwatch scrape -c config.yaml   # Run one cycle and print the records
//	wastlwatch validate -c config.yaml # Validate configuration
//	wastlwatch regions                 # List known regions
//	wastlwatch version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "wastlwatch",
	Short: "A dashboard for Austrian fire department dispatch pages",
	Long: `wastlwatch polls WASTL dispatch pages of Austrian fire departments,
turns their HTML tables into records and serves them as JSON, Server-Sent
Events and a small web dashboard.

Quick start:
  1. Create a config file (wastlwatch.yaml)
  2. Run: wastlwatch serve -c wastlwatch.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  update_interval: 60
  region: lower_austria`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this wastlwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "wastlwatch %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
