// Package query builds the filter predicates sent to the complaints dataset.
//
// A Range names a borough and an inclusive span of calendar years. Specs
// splits it into one Spec per year; Where renders the SoQL predicate for a
// single year. Range validation happens here, before any remote call is made.
package query

import (
	"errors"
	"fmt"
	"strings"
)

// Agency is the only agency this pipeline queries.
const Agency = "NYPD"

// Years outside this window are rejected at the boundary.
const (
	MinYear = 2015
	MaxYear = 2024
)

var (
	ErrYearOutOfRange = errors.New("query: year out of range")
	ErrYearOrder      = errors.New("query: end year before start year")
	ErrPageLimit      = errors.New("query: page limit must be >= 1")
)

// Spec is the parameter set for one chunk request.
type Spec struct {
	Agency    string
	Borough   Borough
	Year      int
	PageLimit int
}

// Where renders the filter predicate for s.
func (s Spec) Where() string {
	agency := s.Agency
	if agency == "" {
		agency = Agency
	}
	return Where(agency, s.Borough, s.Year)
}

// Where produces a predicate equivalent to
// "agency = <agency> AND borough = <borough> AND created_date BETWEEN
// <year>-01-01 AND <year>-12-31". The borough must already be validated;
// year is not range-checked here.
func Where(agency string, b Borough, year int) string {
	return fmt.Sprintf(
		"agency = '%s' AND borough = '%s' AND created_date between '%04d-01-01T00:00:00' and '%04d-12-31T23:59:59'",
		quote(agency), quote(b.FilterValue()), year, year,
	)
}

// Range is a validated request for [StartYear, EndYear] in one borough.
type Range struct {
	Borough   Borough
	StartYear int
	EndYear   int
	PageLimit int
}

// ValidateYear checks a single year against the availability window.
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrYearOutOfRange, year, MinYear, MaxYear)
	}
	return nil
}

// Validate enforces the boundary rules: both years in the window, end >= start,
// a known borough and a positive page limit.
func (r Range) Validate() error {
	if !r.Borough.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownBorough, string(r.Borough))
	}
	if err := ValidateYear(r.StartYear); err != nil {
		return fmt.Errorf("start year: %w", err)
	}
	if err := ValidateYear(r.EndYear); err != nil {
		return fmt.Errorf("end year: %w", err)
	}
	if r.EndYear < r.StartYear {
		return fmt.Errorf("%w: %d < %d", ErrYearOrder, r.EndYear, r.StartYear)
	}
	if r.PageLimit < 1 {
		return fmt.Errorf("%w: got %d", ErrPageLimit, r.PageLimit)
	}
	return nil
}

// Years returns EndYear-StartYear+1.
func (r Range) Years() int {
	if r.EndYear < r.StartYear {
		return 0
	}
	return r.EndYear - r.StartYear + 1
}

// Specs expands r into one Spec per year in ascending order.
func (r Range) Specs() []Spec {
	out := make([]Spec, 0, r.Years())
	for y := r.StartYear; y <= r.EndYear; y++ {
		out = append(out, Spec{
			Agency:    Agency,
			Borough:   r.Borough,
			Year:      y,
			PageLimit: r.PageLimit,
		})
	}
	return out
}

// SoQL string literals escape a single quote by doubling it.
func quote(s string) string { return strings.ReplaceAll(s, "'", "''") }
