package config

import (
	"sort"

	"github.com/jpalmerr/wastlwatch"
)

// CatalogPage is a well-known page of a region.
type CatalogPage struct {
	Name string
	URL  string
	Type wastlwatch.PageType
}

// Region is a named set of well-known pages.
type Region struct {
	// Key is the identifier used in configuration files.
	Key string

	// Name is the display name.
	Name string

	Pages []CatalogPage
}

// catalog lists the Austrian states. Only Lower Austria publishes its
// dispatch pages in a known location so far.
var catalog = map[string]Region{
	"lower_austria": {
		Key:  "lower_austria",
		Name: "Niederösterreich",
		Pages: []CatalogPage{
			{
				Name: "Aktuelle Einsätze",
				URL:  "https://www.feuerwehr-krems.at/codepages/wastl/wastlmain/Land_EinsatzAktuell.asp",
				Type: wastlwatch.Incidents,
			},
			{
				Name: "Feuerwehren im Einsatz",
				URL:  "https://www.feuerwehr-krems.at/codepages/wastl/wastlmain/Land_FFimEinsatz.asp",
				Type: wastlwatch.Departments,
			},
			{
				Name: "Abgeschlossene Einsätze",
				URL:  "https://www.feuerwehr-krems.at/CodePages/Wastl/WastlMain/Land_EinsatzHistorie.asp",
				Type: wastlwatch.Incidents,
			},
		},
	},
	"vienna":        {Key: "vienna", Name: "Wien"},
	"upper_austria": {Key: "upper_austria", Name: "Oberösterreich"},
	"styria":        {Key: "styria", Name: "Steiermark"},
	"salzburg":      {Key: "salzburg", Name: "Salzburg"},
	"burgenland":    {Key: "burgenland", Name: "Burgenland"},
	"carinthia":     {Key: "carinthia", Name: "Kärnten"},
	"tyrol":         {Key: "tyrol", Name: "Tirol"},
	"vorarlberg":    {Key: "vorarlberg", Name: "Vorarlberg"},
}

// LookupRegion returns the catalog entry for key.
func LookupRegion(key string) (Region, bool) {
	r, ok := catalog[key]
	if !ok {
		return Region{}, false
	}
	r.Pages = append([]CatalogPage(nil), r.Pages...)
	return r, true
}

// Regions returns every catalog region sorted by key.
func Regions() []Region {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	regions := make([]Region, 0, len(keys))
	for _, k := range keys {
		r, _ := LookupRegion(k)
		regions = append(regions, r)
	}
	return regions
}
