package wastlwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/wastlwatch/dashboard"
	"github.com/jpalmerr/wastlwatch/internal/metrics"
	"github.com/jpalmerr/wastlwatch/internal/parser"
	"github.com/jpalmerr/wastlwatch/internal/poller"
	"github.com/jpalmerr/wastlwatch/internal/server"
	"github.com/jpalmerr/wastlwatch/internal/store"
)

const (
	defaultUpdateInterval = 60 * time.Minute
	defaultPort           = 8080
	defaultMaxConcurrency = 4
)

// Watcher polls a fixed list of dispatch pages and serves the results.
//
// A Watcher is created with [New] and either run as a service with
// [Watcher.Start] or driven by hand with [Watcher.Refresh]. Every cycle
// fetches all pages, parses their tables and publishes one [Snapshot];
// a page that fails contributes no records without affecting the others.
//
// The typical lifecycle is:
//
//	w, err := wastlwatch.New(wastlwatch.WithPages(pages...))
//	if err != nil {
//	    slog.Error("failed to create watcher", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	w.Start(ctx) // blocks until context cancelled
type Watcher struct {
	title             string
	pages             []Page
	updateInterval    time.Duration
	port              int
	maxConcurrency    int
	logger            *slog.Logger
	snapshotCallbacks []func(Snapshot)

	store       store.Store
	metrics     *metrics.Collector
	coordinator *poller.Coordinator
}

// New creates a new [Watcher] with the given options.
//
// At least one page must be configured via [WithPage] or [WithPages], and
// page names must be unique. Other options have defaults:
//   - Update interval: 60 minutes
//   - Port: 8080
//   - Max concurrency: 4
func New(opts ...Option) (*Watcher, error) {
	cfg := &wwConfig{
		pages:          []Page{},
		updateInterval: defaultUpdateInterval,
		port:           defaultPort,
		maxConcurrency: defaultMaxConcurrency,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.pages) == 0 {
		return nil, errors.New("at least one page is required")
	}

	// names label metrics and log lines
	seen := make(map[string]bool, len(cfg.pages))
	for _, p := range cfg.pages {
		if seen[p.name] {
			return nil, fmt.Errorf("duplicate page name: %q", p.name)
		}
		seen[p.name] = true
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		title:             cfg.title,
		pages:             cfg.pages,
		updateInterval:    cfg.updateInterval,
		port:              cfg.port,
		maxConcurrency:    cfg.maxConcurrency,
		logger:            logger,
		snapshotCallbacks: cfg.snapshotCallbacks,
		metrics:           metrics.New(),
	}

	pollerPages := w.toPollerPages()
	w.store = store.NewMemoryStore(poller.EmptySnapshot(pollerPages))

	var parserOpts []parser.Option
	if cfg.headerFunc != nil {
		parserOpts = append(parserOpts, parser.WithHeaderFunc(cfg.headerFunc))
	}

	w.coordinator = poller.NewCoordinator(poller.Config{
		Pages:          pollerPages,
		Interval:       w.updateInterval,
		MaxConcurrency: w.maxConcurrency,
		Parser:         parser.New(parserOpts...),
		Store:          w.store,
		Observer:       w.metrics,
		OnPublish:      w.runCallbacks,
		Logger:         logger,
	})

	return w, nil
}

// Start begins polling pages and serving the dashboard.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - All pages are polled immediately, then once per update interval
//   - The HTTP server serves the dashboard, JSON API, SSE stream and metrics
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails
// to start. A Watcher can be started once.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("wastlwatch starting", "page_count", len(w.pages))
	w.logger.Info("polling configured", "interval", w.updateInterval.String())
	w.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", w.port))

	if ctx.Err() != nil {
		return nil
	}

	httpServer := server.NewServer(w.store, w.port, dashboard.Assets, w.title, w.metrics.Handler(), w.logger)
	if err := httpServer.Start(ctx); err != nil {
		w.coordinator.Stop()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	w.coordinator.Start(ctx)

	<-ctx.Done()
	w.coordinator.Stop()
	w.logger.Info("wastlwatch stopped")
	return nil
}

// Refresh runs one polling cycle immediately and returns its snapshot.
//
// Refresh does not need [Watcher.Start]; it waits for a cycle already in
// progress. If ctx is cancelled mid-cycle nothing is published and the
// previous snapshot is returned together with the error.
func (w *Watcher) Refresh(ctx context.Context) (Snapshot, error) {
	return w.coordinator.Refresh(ctx)
}

// Snapshot returns the latest published snapshot. Before the first cycle it
// lists every page with no records.
func (w *Watcher) Snapshot() Snapshot {
	return w.coordinator.Snapshot()
}

// RecordCount returns the number of records of page i in the latest
// snapshot, or 0 for an unknown index.
func (w *Watcher) RecordCount(i int) int {
	return w.coordinator.RecordCount(i)
}

// Records returns page i's records and URL from the latest snapshot.
// The boolean is false for an unknown index.
func (w *Watcher) Records(i int) (PageAttributes, bool) {
	records, url, ok := w.coordinator.Records(i)
	if !ok {
		return PageAttributes{}, false
	}
	return PageAttributes{DataList: records, URL: url}, true
}

// Pages returns a copy of the configured pages in index order.
func (w *Watcher) Pages() []Page {
	cp := make([]Page, len(w.pages))
	copy(cp, w.pages)
	return cp
}

// Port returns the configured HTTP port.
func (w *Watcher) Port() int {
	return w.port
}

// UpdateInterval returns the configured interval between polling cycles.
func (w *Watcher) UpdateInterval() time.Duration {
	return w.updateInterval
}

// toPollerPages converts the configured pages to the poller's representation.
func (w *Watcher) toPollerPages() []poller.PageInfo {
	result := make([]poller.PageInfo, len(w.pages))
	for i, p := range w.pages {
		result[i] = poller.PageInfo{
			Name:    p.name,
			URL:     p.url,
			Type:    p.pageType,
			Headers: copyMap(p.headers),
			Timeout: p.timeout,
		}
	}
	return result
}

// runCallbacks hands a published snapshot to every registered callback.
func (w *Watcher) runCallbacks(s Snapshot) {
	for _, cb := range w.snapshotCallbacks {
		// each callback gets its own copy so none can alter the published one
		invokeCallbackSafe(cb, s.Clone(), w.logger)
	}
}

// invokeCallbackSafe calls a snapshot callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Snapshot), s Snapshot, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("snapshot callback panicked",
				"panic", r,
				"cycle", s.Cycle,
			)
		}
	}()
	cb(s)
}
