package wastlwatch

import (
	"errors"
	"log/slog"
	"time"
)

// wwConfig holds mutable state during Watcher construction.
type wwConfig struct {
	title             string
	pages             []Page
	updateInterval    time.Duration
	port              int
	maxConcurrency    int
	logger            *slog.Logger
	snapshotCallbacks []func(Snapshot)
	headerFunc        HeaderFunc
}

// Option is a function that configures a [Watcher] during construction.
//
// Options return an error if validation fails.
type Option func(*wwConfig) error

// WithPage adds a single [Page] to the watch list.
//
// Pages keep the order in which they are added; a page's position is its
// index in every [Snapshot].
func WithPage(p Page) Option {
	return func(cfg *wwConfig) error {
		cfg.pages = append(cfg.pages, p)
		return nil
	}
}

// WithPages adds multiple [Page] values to the watch list.
func WithPages(pages ...Page) Option {
	return func(cfg *wwConfig) error {
		cfg.pages = append(cfg.pages, pages...)
		return nil
	}
}

// WithUpdateInterval sets the time between polling cycles.
// Defaults to 60 minutes if not specified.
//
// Returns an error if the duration is zero or negative.
func WithUpdateInterval(d time.Duration) Option {
	return func(cfg *wwConfig) error {
		if d <= 0 {
			return errors.New("update interval must be positive")
		}
		cfg.updateInterval = d
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard and API.
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *wwConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithMaxConcurrency sets how many pages are fetched in parallel within a
// cycle. Defaults to 4 if not specified.
//
// Returns an error if the value is zero or negative.
func WithMaxConcurrency(n int) Option {
	return func(cfg *wwConfig) error {
		if n <= 0 {
			return errors.New("max concurrency must be positive")
		}
		cfg.maxConcurrency = n
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Watcher.
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *wwConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
// If not specified, defaults to "WASTL Watch".
func WithTitle(title string) Option {
	return func(cfg *wwConfig) error {
		cfg.title = title
		return nil
	}
}

// WithSnapshotCallback registers a function to be called with every
// published [Snapshot].
//
// Multiple callbacks may be registered; they execute in registration order
// after the snapshot is visible through [Watcher.Snapshot]. Callbacks run
// on the polling goroutine and should return quickly. Panics within
// callbacks are recovered and logged.
//
// Example:
//
//	w, err := wastlwatch.New(
//	    wastlwatch.WithPage(p),
//	    wastlwatch.WithSnapshotCallback(func(s wastlwatch.Snapshot) {
//	        log.Printf("cycle %d: %d active incidents", s.Cycle, s.RecordCount(0))
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithSnapshotCallback(cb func(Snapshot)) Option {
	return func(cfg *wwConfig) error {
		if cb == nil {
			return nil
		}
		cfg.snapshotCallbacks = append(cfg.snapshotCallbacks, cb)
		return nil
	}
}

// WithHeaderFunc replaces the predicate that recognizes table header rows.
// The default drops rows containing "Zeit" or "Feuerwehr".
//
// Returns an error if fn is nil.
func WithHeaderFunc(fn HeaderFunc) Option {
	return func(cfg *wwConfig) error {
		if fn == nil {
			return errors.New("header func cannot be nil")
		}
		cfg.headerFunc = fn
		return nil
	}
}
