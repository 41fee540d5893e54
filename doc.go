// Package wastlwatch watches the public WASTL dispatch pages of Austrian fire
// brigades and turns their HTML tables into structured records.
//
// The package is SDK-first: configure pages with functional options, then
// either run the watcher as a service with a dashboard, JSON API, SSE
// stream and Prometheus metrics, or drive polling cycles yourself.
//
// # Quick Start
//
//	p, _ := wastlwatch.NewPage("Aktuelle Einsätze",
//	    "https://www.feuerwehr-krems.at/codepages/wastl/wastlmain/Land_EinsatzAktuell.asp",
//	    wastlwatch.Incidents)
//	w, _ := wastlwatch.New(wastlwatch.WithPage(p))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	w.Start(ctx) // blocks until context is cancelled
//
// For a single scrape without the HTTP server use [Watcher.Refresh]:
//
//	snap, err := w.Refresh(ctx)
//	for _, r := range snap.Pages[0].Records {
//	    fmt.Println(r.Date, r.Time, r.District, r.Category)
//	}
//
// # Page Types
//
// WASTL pages come in two row layouts. Both are read relative to the first
// cell that holds a time (a ":" or "Std"):
//
//   - [Incidents]: district, location and category precede the time
//   - [Departments]: department and category precede the time
//
// Fields a layout does not carry are set to [Missing].
//
// # Snapshots
//
// Every cycle fetches all pages concurrently and publishes one [Snapshot]
// once all of them are done. Readers always see a complete snapshot. A page
// that fails to load has no records in that cycle and carries the error in
// its [PageState]; the other pages are unaffected.
//
// # Architecture
//
// The internal packages are not part of the public API:
//
//   - internal/parser: HTML table rows to records
//   - internal/poller: fetch client and polling coordinator
//   - internal/store: current snapshot with pub/sub
//   - internal/server: dashboard, REST API and Server-Sent Events
//   - internal/metrics: Prometheus collectors
//   - dashboard: embedded web UI assets
package wastlwatch
