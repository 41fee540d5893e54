package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/wastlwatch"
	"github.com/jpalmerr/wastlwatch/example/mockwastl"
)

func main() {
	// start mock WASTL server (see mockwastl)
	go func() {
		if err := http.ListenAndServe(":9999", mockwastl.New(nil).Handler()); err != nil {
			slog.Error("mock server error", "error", err)
			os.Exit(1)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	aktuell, err := wastlwatch.NewPage("Aktuelle Einsätze", "http://localhost:9999/aktuell", wastlwatch.Incidents)
	if err != nil {
		slog.Error("failed to create page", "error", err)
		os.Exit(1)
	}
	ff, _ := wastlwatch.NewPage("Feuerwehren im Einsatz", "http://localhost:9999/ff", wastlwatch.Departments,
		wastlwatch.WithTimeout(5*time.Second),
	)
	down, _ := wastlwatch.NewPage("Offline", "http://localhost:9999/down", wastlwatch.Incidents)

	w, err := wastlwatch.New(
		wastlwatch.WithPages(aktuell, ff, down),
		wastlwatch.WithUpdateInterval(30*time.Second),
		wastlwatch.WithPort(8080),
		wastlwatch.WithTitle("Feuerwehr Demo"),
		wastlwatch.WithSnapshotCallback(func(s wastlwatch.Snapshot) {
			for i, p := range s.Pages {
				slog.Info("page updated", "index", i, "name", p.Name, "records", len(p.Records))
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create watcher", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   wastlwatch Demo                                     ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Pages:                                              ║")
	fmt.Println("  ║   • 2 mock pages, refreshed every 30s                 ║")
	fmt.Println("  ║   • 1 page that always fails                          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		slog.Error("wastlwatch error", "error", err)
		os.Exit(1)
	}
}
