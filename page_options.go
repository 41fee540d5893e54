package wastlwatch

import (
	"errors"
	"time"
)

// pageConfig holds mutable state during page construction.
type pageConfig struct {
	headers map[string]string
	timeout time.Duration
}

// PageOption is a function that configures a [Page] during construction.
//
// Built-in options: [WithTimeout], [WithHeaders].
type PageOption func(*pageConfig) error

// WithTimeout sets the fetch timeout for this page.
//
// A page that does not respond in time contributes no records to the cycle.
// Defaults to 15 seconds if not specified.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) PageOption {
	return func(cfg *pageConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithHeaders adds custom HTTP headers to requests for this page.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	p, err := wastlwatch.NewPage("Einsätze", url, wastlwatch.Incidents,
//	    wastlwatch.WithHeaders("Accept-Language", "de-AT"),
//	)
//
// Returns an error if an odd number of arguments is provided.
func WithHeaders(keyValues ...string) PageOption {
	return func(cfg *pageConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}
