package wastlwatch

import (
	"github.com/jpalmerr/wastlwatch/internal/parser"
	"github.com/jpalmerr/wastlwatch/internal/store"
)

// Missing marks a record field that the page layout does not carry.
const Missing = parser.Missing

// Record is one dispatch table row.
//
// It encodes to JSON as the array [date, time, district, location, category].
type Record = parser.Record

// Snapshot is the complete result of one polling cycle. Pages[i] belongs to
// the i-th configured page.
type Snapshot = store.Snapshot

// PageState is one page's entry in a [Snapshot].
type PageState = store.PageState

// HeaderFunc reports whether a table row is a header row that must not be
// turned into a record.
type HeaderFunc = parser.HeaderFunc

// KeywordHeader returns a [HeaderFunc] that matches rows in which any cell
// contains one of the keywords.
func KeywordHeader(keywords ...string) HeaderFunc {
	return parser.KeywordHeader(keywords...)
}

// PageAttributes is the per-page payload handed to consumers: the records
// and the URL they came from.
type PageAttributes struct {
	DataList []Record `json:"data_list"`
	URL      string   `json:"url"`
}
