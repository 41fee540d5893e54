package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/wastlwatch"
	"github.com/jpalmerr/wastlwatch/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// serveCmd starts the wastlwatch dashboard server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Start the wastlwatch dashboard server.

The server will:
  - Load configuration from the specified YAML file
  - Poll all configured pages once immediately, then every update_interval
  - Serve the dashboard, JSON API and metrics on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  wastlwatch serve -c config.yaml
  wastlwatch serve --config /etc/wastlwatch/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

// loadWatcher loads the config file and builds a Watcher from it.
func loadWatcher(configFile string, logger *slog.Logger) (*wastlwatch.Watcher, *config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	pages, err := config.BuildPages(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build pages: %w", err)
	}

	opts := append(config.Options(cfg),
		wastlwatch.WithPages(pages...),
		wastlwatch.WithLogger(logger),
	)

	w, err := wastlwatch.New(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return w, cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(slog.LevelInfo)

	configFile, _ := cmd.Flags().GetString("config")
	w, cfg, err := loadWatcher(configFile, logger)
	if err != nil {
		return err
	}

	logger.Info("config loaded",
		"region", cfg.Region,
		"pages", len(w.Pages()),
	)
	logger.Info("starting server",
		"port", w.Port(),
		"update_interval", w.UpdateInterval().String(),
	)

	// cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
