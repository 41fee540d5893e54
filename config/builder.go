package config

import (
	"fmt"
	"sort"

	"github.com/jpalmerr/wastlwatch"
)

// BuildPages converts parsed configuration into SDK Page objects.
//
// The region's catalog pages come first, followed by the configured pages
// in file order. The position in the result is the page index.
func BuildPages(cfg *Config) ([]wastlwatch.Page, error) {
	var pages []wastlwatch.Page

	if cfg.Region != "" {
		region, ok := LookupRegion(cfg.Region)
		if !ok {
			return nil, fmt.Errorf("unknown region %q", cfg.Region)
		}
		for _, cp := range region.Pages {
			p, err := wastlwatch.NewPage(cp.Name, cp.URL, cp.Type)
			if err != nil {
				return nil, fmt.Errorf("region %s: %w", region.Key, err)
			}
			pages = append(pages, p)
		}
	}

	for _, pc := range cfg.Pages {
		p, err := buildPage(pc)
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", pc.Name, err)
		}
		pages = append(pages, p)
	}

	return pages, nil
}

// Options returns the SDK options for everything in cfg except pages.
func Options(cfg *Config) []wastlwatch.Option {
	opts := []wastlwatch.Option{
		wastlwatch.WithPort(cfg.Port),
		wastlwatch.WithUpdateInterval(cfg.Interval()),
	}
	if cfg.Title != "" {
		opts = append(opts, wastlwatch.WithTitle(cfg.Title))
	}
	if cfg.MaxConcurrency > 0 {
		opts = append(opts, wastlwatch.WithMaxConcurrency(cfg.MaxConcurrency))
	}
	return opts
}

// buildPage converts a single PageConfig to an SDK Page.
func buildPage(pc PageConfig) (wastlwatch.Page, error) {
	var opts []wastlwatch.PageOption

	if pc.Timeout != 0 {
		opts = append(opts, wastlwatch.WithTimeout(pc.Timeout.Duration()))
	}

	if len(pc.Headers) > 0 {
		opts = append(opts, wastlwatch.WithHeaders(mapToKeyValuePairs(pc.Headers)...))
	}

	return wastlwatch.NewPage(pc.Name, pc.URL, pc.Type, opts...)
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
