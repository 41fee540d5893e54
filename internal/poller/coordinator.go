package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/wastlwatch/internal/parser"
	"github.com/jpalmerr/wastlwatch/internal/store"
)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxConcurrency is the number of pages fetched in parallel.
	DefaultMaxConcurrency = 4

	// DefaultInterval is used when no positive interval is configured.
	DefaultInterval = 60 * time.Minute
)

// PageInfo contains what the coordinator needs to poll one page.
//
// This is the poller-internal representation of a page, decoupled from the
// public wastlwatch.Page type to avoid circular dependencies.
type PageInfo struct {
	// Name is the display name of the page.
	Name string

	// URL is the page to fetch.
	URL string

	// Type selects the row layout rule.
	Type parser.PageType

	// Headers are extra HTTP headers sent with the request.
	Headers map[string]string

	// Timeout bounds the fetch. Zero means DefaultTimeout.
	Timeout time.Duration
}

// PageResult is the tagged outcome of one page's fetch and parse.
type PageResult struct {
	Index      int
	Page       PageInfo
	Records    []parser.Record
	StatusCode int
	Latency    time.Duration
	FetchedAt  time.Time
	Err        error
}

// Observer receives polling statistics. The metrics collector implements it.
type Observer interface {
	ObservePage(page string, records int, latency time.Duration, err error)
	ObserveCycle(duration time.Duration, completedAt time.Time)
}

// Config holds everything NewCoordinator needs.
type Config struct {
	// Pages are polled in this order; their index is the snapshot key.
	Pages []PageInfo

	// Interval is the time between cycles. Any positive value is trusted as
	// given; range checks belong to the configuration layer.
	Interval time.Duration

	// MaxConcurrency bounds parallel fetches. Defaults to DefaultMaxConcurrency.
	MaxConcurrency int

	// Parser parses page bodies. Defaults to parser.New().
	Parser *parser.Parser

	// Store receives published snapshots. Defaults to a MemoryStore.
	Store store.Store

	// Observer is optional.
	Observer Observer

	// OnPublish runs after each snapshot has been published. Optional.
	OnPublish func(store.Snapshot)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Coordinator drives periodic fetch-parse cycles over a fixed page list and
// publishes one snapshot per cycle.
//
// Within a cycle pages are fetched concurrently on a bounded worker pool.
// Each page produces a [PageResult]; a failed page contributes an empty
// record list and never affects the other pages. The snapshot is published
// with a single store operation after every page has finished.
//
// Cycles never overlap: the polling loop runs them one after another and
// [Coordinator.Refresh] waits for a running cycle to finish.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Coordinator struct {
	pages          []PageInfo
	interval       time.Duration
	maxConcurrency int
	client         *Client
	parser         *parser.Parser
	store          store.Store
	observer       Observer
	onPublish      func(store.Snapshot)
	logger         *slog.Logger

	// cycleMu serializes cycles; cycle is guarded by it.
	cycleMu sync.Mutex
	cycle   uint64

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewCoordinator creates a [Coordinator]. The coordinator must be started
// with [Coordinator.Start] or driven manually with [Coordinator.Refresh].
func NewCoordinator(cfg Config) *Coordinator {
	pages := make([]PageInfo, len(cfg.Pages))
	for i, p := range cfg.Pages {
		if p.Timeout <= 0 {
			p.Timeout = DefaultTimeout
		}
		pages[i] = p
	}

	c := &Coordinator{
		pages:          pages,
		interval:       cfg.Interval,
		maxConcurrency: cfg.MaxConcurrency,
		client:         NewClient(),
		parser:         cfg.Parser,
		store:          cfg.Store,
		observer:       cfg.Observer,
		onPublish:      cfg.OnPublish,
		logger:         cfg.Logger,
	}
	if c.interval <= 0 {
		c.interval = DefaultInterval
	}
	if c.maxConcurrency <= 0 {
		c.maxConcurrency = DefaultMaxConcurrency
	}
	if c.parser == nil {
		c.parser = parser.New()
	}
	if c.store == nil {
		c.store = store.NewMemoryStore(EmptySnapshot(pages))
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// EmptySnapshot returns the cycle-0 snapshot: every page present with no
// records.
func EmptySnapshot(pages []PageInfo) store.Snapshot {
	s := store.Snapshot{Pages: make([]store.PageState, len(pages))}
	for i, p := range pages {
		s.Pages[i] = store.PageState{
			Index:   i,
			Name:    p.Name,
			URL:     p.URL,
			Type:    string(p.Type),
			Records: []parser.Record{},
		}
	}
	return s
}

// Start runs a cycle immediately and then one per interval in a background
// goroutine, until [Coordinator.Stop] is called or ctx is cancelled.
//
// Start is idempotent. If Stop was called before Start, Start is a no-op.
// With no pages configured nothing is started.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true

	if len(c.pages) == 0 {
		c.mu.Unlock()
		c.logger.Warn("no pages configured, polling disabled")
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()

		c.refreshLogged(ctx)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// a tick that fires during a long cycle is dropped by the ticker
				c.refreshLogged(ctx)
			}
		}
	}()
}

// Stop halts the polling loop, waits for a running cycle to finish and
// closes idle connections. Stop is idempotent and safe before Start.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		if c.cancel != nil {
			c.cancel()
		}
	}
	c.mu.Unlock()

	c.wg.Wait()
	c.client.Close()
}

// Snapshot returns the latest published snapshot.
func (c *Coordinator) Snapshot() store.Snapshot {
	return c.store.Current()
}

// RecordCount returns the number of records of page i in the latest snapshot.
func (c *Coordinator) RecordCount(i int) int {
	return c.store.Current().RecordCount(i)
}

// Records returns page i's records from the latest snapshot together with
// the page's configured URL.
func (c *Coordinator) Records(i int) ([]parser.Record, string, bool) {
	if i < 0 || i >= len(c.pages) {
		return nil, "", false
	}
	records, ok := c.store.Current().Records(i)
	if !ok {
		records = []parser.Record{}
	}
	return records, c.pages[i].URL, true
}

// Refresh runs one full cycle and returns the published snapshot.
//
// If a cycle is already running, Refresh waits for it and then runs its own.
// If ctx is cancelled during the cycle the partial results are discarded,
// nothing is published and the previous snapshot is returned with ctx's
// error.
func (c *Coordinator) Refresh(ctx context.Context) (store.Snapshot, error) {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	if len(c.pages) == 0 {
		return c.store.Current(), nil
	}

	start := time.Now()
	next := EmptySnapshot(c.pages)

	failed := 0
	for result := range c.pollAll(ctx) {
		next.Pages[result.Index] = toPageState(result)
		if result.Err != nil {
			failed++
		}
		if c.observer != nil {
			c.observer.ObservePage(result.Page.Name, len(result.Records), result.Latency, result.Err)
		}
	}

	if err := ctx.Err(); err != nil {
		return c.store.Current(), fmt.Errorf("cycle cancelled: %w", err)
	}

	c.cycle++
	next.Cycle = c.cycle
	next.CompletedAt = time.Now()
	c.store.Publish(next)

	if c.observer != nil {
		c.observer.ObserveCycle(time.Since(start), next.CompletedAt)
	}
	c.logger.Info("cycle completed",
		"cycle", next.Cycle,
		"pages", len(c.pages),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if c.onPublish != nil {
		c.invokePublishSafe(next)
	}
	return next, nil
}

// refreshLogged runs a cycle from the polling loop.
func (c *Coordinator) refreshLogged(ctx context.Context) {
	if _, err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
		c.logger.Error("cycle failed", "error", err)
	}
}

// pollAll fetches every page on the worker pool. The returned channel yields
// one result per page and is closed once all pages are done.
func (c *Coordinator) pollAll(ctx context.Context) <-chan PageResult {
	jobs := make(chan int, len(c.pages))
	results := make(chan PageResult, len(c.pages))

	workers := c.maxConcurrency
	if workers > len(c.pages) {
		workers = len(c.pages)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- c.pollPage(ctx, i)
			}
		}()
	}

	for i := range c.pages {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// pollPage fetches and parses a single page.
func (c *Coordinator) pollPage(ctx context.Context, i int) PageResult {
	p := c.pages[i]
	resp := c.client.Fetch(ctx, p.URL, p.Headers, p.Timeout)

	result := PageResult{
		Index:      i,
		Page:       p,
		Records:    []parser.Record{},
		StatusCode: resp.StatusCode,
		Latency:    resp.Latency,
		FetchedAt:  time.Now(),
		Err:        resp.Error,
	}

	if resp.Error == nil {
		records, err := c.safeParse(p, resp.Body)
		if err != nil {
			result.Err = err
		} else {
			result.Records = records
		}
	}

	logAttrs := []any{
		"page", p.Name,
		"url", p.URL,
		"latency_ms", result.Latency.Milliseconds(),
	}
	if result.Err != nil {
		c.logger.Warn("page poll failed", append(logAttrs, "error", result.Err.Error())...)
	} else {
		c.logger.Debug("page polled", append(logAttrs, "records", len(result.Records))...)
	}
	return result
}

// safeParse runs the parser with panic recovery.
// A panic is logged with its stack trace under a correlation ID and
// reported as an error containing that ID.
func (c *Coordinator) safeParse(p PageInfo, body string) (records []parser.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			c.logger.Error("parser panic",
				"correlation_id", correlationID,
				"page", p.Name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			records = nil
			err = fmt.Errorf("parser panic (correlation_id: %s)", correlationID)
		}
	}()
	return c.parser.Parse(strings.NewReader(body), p.Type)
}

// invokePublishSafe runs the publish hook; panics are logged, not propagated.
func (c *Coordinator) invokePublishSafe(s store.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("publish hook panicked", "panic", r, "cycle", s.Cycle)
		}
	}()
	c.onPublish(s)
}

// toPageState converts a poll result into its snapshot representation.
func toPageState(r PageResult) store.PageState {
	var errStr *string
	if r.Err != nil {
		s := r.Err.Error()
		errStr = &s
	}

	records := r.Records
	if records == nil {
		records = []parser.Record{}
	}

	return store.PageState{
		Index:          r.Index,
		Name:           r.Page.Name,
		URL:            r.Page.URL,
		Type:           string(r.Page.Type),
		Records:        records,
		Error:          errStr,
		StatusCode:     r.StatusCode,
		ResponseTimeMs: r.Latency.Milliseconds(),
		FetchedAt:      r.FetchedAt,
	}
}
