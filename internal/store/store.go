package store

import (
	"time"

	"github.com/jpalmerr/wastlwatch/internal/parser"
)

// PageState is the outcome of the latest cycle for one configured page.
//
// Records is empty (never nil) when the page reported nothing or when the
// fetch failed; Error tells the two apart.
type PageState struct {
	// Index is the page's position in the configured page list.
	Index int `json:"index"`

	// Name is the page's display name.
	Name string `json:"name"`

	// URL is the page that was fetched.
	URL string `json:"url"`

	// Type is the page type used to parse the rows.
	Type string `json:"type"`

	// Records are the parsed rows in document order.
	Records []parser.Record `json:"data_list"`

	// Error contains the fetch or parse failure of this cycle, if any.
	Error *string `json:"error"`

	// StatusCode is the HTTP status code, zero if no response was received.
	StatusCode int `json:"status_code"`

	// ResponseTimeMs is the fetch latency in milliseconds.
	ResponseTimeMs int64 `json:"response_time_ms"`

	// FetchedAt is when the page was fetched. Zero before the first cycle.
	FetchedAt time.Time `json:"fetched_at"`
}

// Snapshot is the complete result of one polling cycle.
//
// Pages[i] belongs to page index i. A Snapshot is built once per cycle and
// never modified after it is published.
type Snapshot struct {
	// Cycle counts completed cycles; 0 is the empty startup snapshot.
	Cycle uint64 `json:"cycle"`

	// CompletedAt is when the cycle finished. Zero before the first cycle.
	CompletedAt time.Time `json:"completed_at"`

	// Pages holds one entry per configured page, in configuration order.
	Pages []PageState `json:"pages"`
}

// Page returns the state of page i.
func (s Snapshot) Page(i int) (PageState, bool) {
	if i < 0 || i >= len(s.Pages) {
		return PageState{}, false
	}
	return s.Pages[i], true
}

// RecordCount returns the number of records for page i, 0 for unknown pages.
func (s Snapshot) RecordCount(i int) int {
	p, ok := s.Page(i)
	if !ok {
		return 0
	}
	return len(p.Records)
}

// Records returns a copy of the records for page i.
func (s Snapshot) Records(i int) ([]parser.Record, bool) {
	p, ok := s.Page(i)
	if !ok {
		return nil, false
	}
	return append([]parser.Record{}, p.Records...), true
}

// Clone returns a deep copy that shares no slices with s.
func (s Snapshot) Clone() Snapshot {
	cp := s
	cp.Pages = make([]PageState, len(s.Pages))
	for i, p := range s.Pages {
		p.Records = append([]parser.Record{}, p.Records...)
		if p.Error != nil {
			e := *p.Error
			p.Error = &e
		}
		cp.Pages[i] = p
	}
	return cp
}

// Mapping returns the page-index keyed view of the snapshot.
func (s Snapshot) Mapping() map[int][]parser.Record {
	m := make(map[int][]parser.Record, len(s.Pages))
	for _, p := range s.Pages {
		m[p.Index] = append([]parser.Record{}, p.Records...)
	}
	return m
}

// Store holds the current snapshot and notifies subscribers of new ones.
//
// Store implementations must be safe for concurrent access. Readers always
// see a complete snapshot: either the one before or the one after a
// Publish, never a mix of both.
type Store interface {
	// Publish replaces the current snapshot and notifies all subscribers.
	Publish(snapshot Snapshot)

	// Current returns the latest published snapshot.
	Current() Snapshot

	// Subscribe returns a channel that receives every published snapshot.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Snapshot

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Snapshot)
}
