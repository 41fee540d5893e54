package wastlwatch

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jpalmerr/wastlwatch/internal/parser"
)

const defaultPageTimeout = 15 * time.Second

// PageType selects how a page's table rows are laid out.
type PageType = parser.PageType

const (
	// Incidents pages list district, location, category and time per row.
	Incidents = parser.Incidents

	// Departments pages list the fire department, category and time per row.
	Departments = parser.Departments
)

// ParsePageType converts a string such as "incidents" into a [PageType].
// Unknown values are rejected.
func ParsePageType(s string) (PageType, error) {
	return parser.ParsePageType(s)
}

// Page is a dispatch page to watch.
//
// Page is immutable after creation via [NewPage]. All fields are private
// with getter methods that return copies of mutable data (maps).
type Page struct {
	name     string
	url      string
	pageType PageType
	timeout  time.Duration
	headers  map[string]string
}

// Name returns the page's display name.
func (p Page) Name() string {
	return p.name
}

// URL returns the page URL.
func (p Page) URL() string {
	return p.url
}

// Type returns the row layout of the page.
func (p Page) Type() PageType {
	return p.pageType
}

// Timeout returns the fetch timeout.
// Defaults to 15 seconds if not explicitly set via [WithTimeout].
func (p Page) Timeout() time.Duration {
	return p.timeout
}

// Headers returns a copy of the page's custom HTTP headers.
// Returns nil if no custom headers are set.
func (p Page) Headers() map[string]string {
	return copyMap(p.headers)
}

// NewPage creates a [Page] with the given name, URL, type and options.
//
// The rawURL parameter must be an http:// or https:// URL.
//
// Returns an error if the name is empty, the URL is invalid or the page
// type is unknown.
//
// Example:
//
//	p, err := wastlwatch.NewPage("Aktuelle Einsätze",
//	    "https://www.feuerwehr-krems.at/codepages/wastl/wastlmain/Land_EinsatzAktuell.asp",
//	    wastlwatch.Incidents,
//	    wastlwatch.WithTimeout(10*time.Second),
//	)
func NewPage(name, rawURL string, pageType PageType, opts ...PageOption) (Page, error) {
	if name == "" {
		return Page{}, errors.New("page name cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return Page{}, errors.New("URL must have an http:// or https:// scheme")
	}

	if !pageType.Valid() {
		return Page{}, fmt.Errorf("unknown page type %q", pageType)
	}

	cfg := &pageConfig{
		headers: make(map[string]string),
		timeout: defaultPageTimeout,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Page{}, err
		}
	}

	return Page{
		name:     name,
		url:      rawURL,
		pageType: pageType,
		timeout:  cfg.timeout,
		headers:  cfg.headers,
	}, nil
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
