package parser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Missing is the sentinel used for fields that the row layout does not carry.
const Missing = "-"

// PageType selects the relative-offset rule used to extract fields.
type PageType string

const (
	// Incidents rows read [district] [location] [category] [time].
	Incidents PageType = "incidents"

	// Departments rows read [department] [category] [time]. The department
	// name is stored in the District field.
	Departments PageType = "departments"
)

// Valid reports whether t is one of the known page types.
func (t PageType) Valid() bool {
	return t == Incidents || t == Departments
}

// ParsePageType converts s to a [PageType], ignoring case and surrounding
// space.
func ParsePageType(s string) (PageType, error) {
	t := PageType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown page type %q (expected %q or %q)", s, Incidents, Departments)
	}
	return t, nil
}

// UnmarshalText implements encoding.TextUnmarshaler so page types can be
// read from configuration files.
func (t *PageType) UnmarshalText(text []byte) error {
	parsed, err := ParsePageType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Record is one normalized table row.
//
// Time is never empty for a record produced by the parser. The other fields
// hold [Missing] when the row layout does not contain them.
//
// On the wire a Record is the five-element array
// [date, time, district, location, category].
type Record struct {
	Date     string
	Time     string
	District string
	Location string
	Category string
}

// Fields returns the record as its ordered tuple.
func (r Record) Fields() [5]string {
	return [5]string{r.Date, r.Time, r.District, r.Location, r.Category}
}

// MarshalJSON encodes the record as a five-element array.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields())
}

// UnmarshalJSON decodes the five-element array form.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields []string
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if len(fields) != 5 {
		return fmt.Errorf("record must have 5 fields, got %d", len(fields))
	}
	*r = Record{
		Date:     fields[0],
		Time:     fields[1],
		District: fields[2],
		Location: fields[3],
		Category: fields[4],
	}
	return nil
}
