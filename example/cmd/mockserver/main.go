// Standalone mock WASTL server for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/wastlwatch serve -c example/config.yaml
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jpalmerr/wastlwatch/example/mockwastl"
)

func main() {
	fmt.Println("Mock WASTL server starting on :9999")
	fmt.Println("Pages: /aktuell (incidents), /ff (departments), /down (503)")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	if err := http.ListenAndServe(":9999", mockwastl.New(nil).Handler()); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
