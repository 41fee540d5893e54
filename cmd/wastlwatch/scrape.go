package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/wastlwatch"
)

// Output formats for the scrape command.
const (
	formatText = "text"
	formatJSON = "json"
)

// scrapeCmd runs a single polling cycle and prints the result.
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch all pages once and print the records",
	Long: `Fetch every configured page once, parse it, and print the records.

No server is started. Pages that fail are reported with their error and
an empty record list; the command still succeeds.

Example:
  wastlwatch scrape -c config.yaml
  wastlwatch scrape -c config.yaml --format json`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	scrapeCmd.Flags().StringP("format", "f", formatText, "output format: text or json")
	scrapeCmd.Flags().BoolP("verbose", "v", false, "show fetch details and debug logs")
	_ = scrapeCmd.MarkFlagRequired("config")
}

func runScrape(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	format, _ := cmd.Flags().GetString("format")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if format != formatText && format != formatJSON {
		return fmt.Errorf("unknown format: %s", format)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	w, _, err := loadWatcher(configFile, newLogger(level))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snap, err := w.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("scrape interrupted: %w", err)
	}

	return writeSnapshot(cmd.OutOrStdout(), snap, format, verbose)
}

// writeSnapshot writes the snapshot in the given format.
func writeSnapshot(w io.Writer, snap wastlwatch.Snapshot, format string, verbose bool) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(snap)
	case formatText:
		writeText(w, snap, verbose)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeText outputs the snapshot as human-readable text.
func writeText(w io.Writer, snap wastlwatch.Snapshot, verbose bool) {
	total := 0
	failed := 0

	for _, p := range snap.Pages {
		fmt.Fprintf(w, "\n[%d] %s (%d records)\n", p.Index, p.Name, len(p.Records))
		if verbose {
			fmt.Fprintf(w, "     URL:    %s\n", p.URL)
			fmt.Fprintf(w, "     Type:   %s\n", p.Type)
			fmt.Fprintf(w, "     Status: %d in %dms\n", p.StatusCode, p.ResponseTimeMs)
		}
		if p.Error != nil {
			failed++
			fmt.Fprintf(w, "  ERROR: %s\n", *p.Error)
			continue
		}
		for _, r := range p.Records {
			f := r.Fields()
			fmt.Fprintf(w, "  %s\n", strings.Join(f[:], " | "))
		}
		total += len(p.Records)
	}

	fmt.Fprintf(w, "\nTotal: %d records across %d pages", total, len(snap.Pages))
	if failed > 0 {
		fmt.Fprintf(w, " (%d failed)", failed)
	}
	fmt.Fprintln(w)
}
