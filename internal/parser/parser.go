package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Parser converts dispatch-page HTML into records.
//
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	isHeader HeaderFunc
}

// Option configures a [Parser].
type Option func(*Parser)

// WithHeaderFunc replaces the header-row predicate. A nil function keeps
// [DefaultHeader].
func WithHeaderFunc(fn HeaderFunc) Option {
	return func(p *Parser) {
		if fn != nil {
			p.isHeader = fn
		}
	}
}

// New creates a [Parser] using [DefaultHeader] unless overridden.
func New(opts ...Option) *Parser {
	p := &Parser{isHeader: DefaultHeader}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads an HTML document and returns its records in document order.
//
// An error is returned only when the document cannot be read at all. A page
// without tables, or whose rows are all rejected, yields an empty slice.
func (p *Parser) Parse(r io.Reader, pageType PageType) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return p.ParseRows(Rows(doc), pageType), nil
}

// ParseString is a convenience wrapper around [Parser.Parse].
func (p *Parser) ParseString(html string, pageType PageType) ([]Record, error) {
	return p.Parse(strings.NewReader(html), pageType)
}

// ParseRows filters and processes already extracted rows.
func (p *Parser) ParseRows(rows [][]string, pageType PageType) []Record {
	records := make([]Record, 0, len(rows))
	for _, cells := range rows {
		if rec, ok := p.row(cells, pageType); ok {
			records = append(records, rec)
		}
	}
	return records
}

// row handles a single row; any panic drops just this row.
func (p *Parser) row(cells []string, pageType PageType) (rec Record, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			rec, ok = Record{}, false
		}
	}()
	if !admit(cells, p.isHeader) {
		return Record{}, false
	}
	return ProcessRow(cells, pageType)
}

// Rows returns the trimmed <td> texts of every <tr> in the document.
func Rows(doc *goquery.Document) [][]string {
	var rows [][]string
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := make([]string, 0, 8)
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		rows = append(rows, cells)
	})
	return rows
}
