package scan

import (
	"fmt"
	"strings"
)

// Sites queried per alias variant, in priority order. Kept shorter than the
// full platform registry so query budgets go to the sites where reviewer
// profiles actually surface.
var querySites = []string{
	"yelp.com",
	"tripadvisor.com",
	"reddit.com",
	"trustpilot.com",
}

// maxQueries bounds the search fan-out per scan.
const maxQueries = 12

// PlatformQueries builds the search query list for an alias and optional
// location. Variant order is preserved; the overall list is capped at
// maxQueries.
func PlatformQueries(alias, location string) []string {
	var queries []string

	add := func(q string) {
		if len(queries) < maxQueries {
			queries = append(queries, q)
		}
	}

	primary := strings.TrimSpace(alias)
	if location != "" {
		add(fmt.Sprintf("%q %s reviews", primary, location))
	} else {
		add(fmt.Sprintf("%q reviews", primary))
	}

	for _, site := range querySites {
		add(fmt.Sprintf("%q site:%s", primary, site))
	}

	for _, variant := range ExpandVariants(alias) {
		if variant == primary {
			continue
		}
		add(fmt.Sprintf("%q", variant))
	}

	return queries
}
