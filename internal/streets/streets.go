// Package streets canonicalizes free-text street names and parses the
// blockface location descriptions carried by the source data.
package streets

import (
	"regexp"
	"strings"
)

// UnknownStreet is the sentinel for blockfaces whose street name could not
// be resolved from any source field.
const UnknownStreet = "Unknown Street"

// UnknownCross is the sentinel for unresolved cross-street names.
const UnknownCross = "Unknown"

// suffixExpansions maps trailing-token abbreviations to their full form.
// Matching is case-insensitive and applies to the last token only, so
// "St Marys Ave" expands the Ave, not the St.
var suffixExpansions = map[string]string{
	"st":   "Street",
	"ave":  "Avenue",
	"blvd": "Boulevard",
	"dr":   "Drive",
	"rd":   "Road",
	"ln":   "Lane",
	"ct":   "Court",
	"pl":   "Place",
	"ter":  "Terrace",
	"hwy":  "Highway",
	"pkwy": "Parkway",
	"cir":  "Circle",
}

var leadingZeros = regexp.MustCompile(`\b0+(\d)`)

// Normalize canonicalizes a raw street name: expands a trailing suffix
// abbreviation, strips leading zeros from numbered streets, and maps empty
// input to the UnknownStreet sentinel. Pure and idempotent.
func Normalize(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return UnknownStreet
	}

	name = leadingZeros.ReplaceAllString(name, "$1")

	tokens := strings.Fields(name)
	last := tokens[len(tokens)-1]
	if full, ok := suffixExpansions[strings.ToLower(strings.TrimSuffix(last, "."))]; ok {
		tokens[len(tokens)-1] = full
	}
	return strings.Join(tokens, " ")
}

// Location is the street context parsed from a blockface description.
type Location struct {
	Street string
	From   string
	To     string
}

// ParseLocation parses descriptions of the form
// "Valencia Street between 17th St and 16th St, west side" into street and
// cross-street names. Descriptions that do not fit the pattern fall back to
// the text before the first comma as the street name.
func ParseLocation(desc string) Location {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return Location{Street: UnknownStreet, From: UnknownCross, To: UnknownCross}
	}

	if street, rest, ok := strings.Cut(desc, " between "); ok {
		if comma := strings.Index(rest, ", "); comma >= 0 {
			rest = rest[:comma]
		}
		if from, to, ok := strings.Cut(rest, " and "); ok {
			return Location{
				Street: Normalize(street),
				From:   strings.TrimSpace(from),
				To:     strings.TrimSpace(to),
			}
		}
	}

	street := desc
	if comma := strings.Index(street, ","); comma >= 0 {
		street = street[:comma]
	}
	return Location{Street: Normalize(street), From: UnknownCross, To: UnknownCross}
}
