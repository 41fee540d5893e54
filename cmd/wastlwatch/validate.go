package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/wastlwatch/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a wastlwatch configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  wastlwatch validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	pages, err := config.BuildPages(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	regionPages := len(pages) - len(cfg.Pages)
	region := cfg.Region
	if region == "" {
		region = "-"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:            %d\n", cfg.Port)
	fmt.Fprintf(out, "  Update interval: %s\n", cfg.Interval())
	fmt.Fprintf(out, "  Region:          %s\n", region)
	fmt.Fprintf(out, "  Pages:           %d from region + %d custom = %d total\n",
		regionPages, len(cfg.Pages), len(pages))

	return nil
}
