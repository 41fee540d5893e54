package parser

import (
	"regexp"
	"strings"
)

var (
	// leadingDigits matches a numeric prefix glued to a district or
	// department name, e.g. "3 Krems".
	leadingDigits = regexp.MustCompile(`^\d+\s*`)

	// datePrefix matches a DD.MM.YYYY date and captures whatever follows it.
	datePrefix = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})\s*(.*)`)
)

// HeaderFunc reports whether a row of cell texts is a header row.
type HeaderFunc func(cells []string) bool

// KeywordHeader returns a [HeaderFunc] that flags a row as header when any
// cell contains one of the keywords.
func KeywordHeader(keywords ...string) HeaderFunc {
	return func(cells []string) bool {
		for _, cell := range cells {
			for _, kw := range keywords {
				if strings.Contains(cell, kw) {
					return true
				}
			}
		}
		return false
	}
}

// DefaultHeader matches the two header styles used by the dispatch pages.
var DefaultHeader = KeywordHeader("Zeit", "Feuerwehr")

// minCells is the narrowest row that can carry a record.
const minCells = 3

// admit applies the row admission filter.
func admit(cells []string, isHeader HeaderFunc) bool {
	if len(cells) < minCells {
		return false
	}
	return !isHeader(cells)
}

// TimeAnchor returns the index of the first cell holding a clock time or a
// relative duration, or -1 if the row has none.
func TimeAnchor(cells []string) int {
	for i, cell := range cells {
		if strings.Contains(cell, ":") || strings.Contains(strings.ToLower(cell), "std") {
			return i
		}
	}
	return -1
}

// ProcessRow extracts a record from the cell texts of one admitted row.
//
// All fields are located relative to the time anchor t:
//
//	category = cells[t-1]
//	incidents:   location = cells[t-2], district = strip(cells[t-3])
//	departments: district = strip(cells[t-2]), location = "-"
//
// The second return value is false when the row has no time anchor.
func ProcessRow(cells []string, pageType PageType) (Record, bool) {
	t := TimeAnchor(cells)
	if t < 0 {
		return Record{}, false
	}

	rec := Record{
		District: Missing,
		Location: Missing,
		Category: at(cells, t-1),
	}

	switch pageType {
	case Incidents:
		rec.Location = at(cells, t-2)
		if t >= 3 {
			rec.District = StripLeadingDigits(cells[t-3])
		}
	case Departments:
		if t >= 2 {
			rec.District = StripLeadingDigits(cells[t-2])
		}
	}

	rec.Date, rec.Time = SplitDateTime(cells[t])
	return rec, true
}

// at returns cells[i], or Missing when i is out of range.
func at(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return Missing
	}
	return cells[i]
}

// StripLeadingDigits removes a leading run of digits and the whitespace
// following it. Non-numeric prefixes are left untouched.
func StripLeadingDigits(s string) string {
	return leadingDigits.ReplaceAllString(s, "")
}

// SplitDateTime splits a time-anchor cell into date and time.
//
// "23.04.2024 14:32" yields ("23.04.2024", "14:32"). A cell without a date,
// such as "< 1 std.", yields ("-", cell). A date with nothing after it also
// falls back to ("-", cell) so the time is never empty.
func SplitDateTime(raw string) (date, clock string) {
	m := datePrefix.FindStringSubmatch(raw)
	if m == nil {
		return Missing, raw
	}
	clock = strings.TrimSpace(m[2])
	if clock == "" {
		return Missing, raw
	}
	return m[1], clock
}
