// Package server provides the HTTP server for the dashboard and JSON API.
//
// This package handles all HTTP concerns:
//
//   - Dashboard serving: the embedded HTML dashboard at "/"
//   - REST API: the latest snapshot at "/api/snapshot", a page listing at
//     "/api/pages" and per-page records at "/api/pages/{index}"
//   - Server-Sent Events: every published snapshot at "/api/sse"
//   - Operations: Prometheus metrics at "/metrics" and a liveness probe at
//     "/healthz"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the wastlwatch library should not need to interact with this
// package directly. The server is started by [wastlwatch.Watcher.Start].
package server
