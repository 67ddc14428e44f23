package query

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownBorough is returned when input does not name one of the five
// boroughs.
var ErrUnknownBorough = errors.New("query: unknown borough")

// Borough is one of the five fixed municipal subdivisions used as a filter.
// The zero value is invalid.
type Borough string

const (
	Bronx        Borough = "BRONX"
	Brooklyn     Borough = "BROOKLYN"
	Manhattan    Borough = "MANHATTAN"
	Queens       Borough = "QUEENS"
	StatenIsland Borough = "STATEN_ISLAND"
)

// Boroughs lists every valid borough in display order.
var Boroughs = []Borough{Bronx, Brooklyn, Manhattan, Queens, StatenIsland}

// ParseBorough matches s case-insensitively against the enumeration. Spaces,
// hyphens and underscores are interchangeable, so "staten island",
// "Staten-Island" and "STATEN_ISLAND" all resolve to StatenIsland.
func ParseBorough(s string) (Borough, error) {
	// Casers carry state, so each call gets its own.
	norm := cases.Upper(language.English).String(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, b := range Boroughs {
		if string(b) == norm {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBorough, s, boroughList())
}

// Valid reports whether b is one of the enumerated values.
func (b Borough) Valid() bool {
	for _, x := range Boroughs {
		if x == b {
			return true
		}
	}
	return false
}

// FilterValue is the spelling used by the remote dataset's borough column.
func (b Borough) FilterValue() string {
	return strings.ReplaceAll(string(b), "_", " ")
}

func (b Borough) String() string { return string(b) }

func boroughList() string {
	names := make([]string, len(Boroughs))
	for i, b := range Boroughs {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}
