// Package summary reduces validated complaint rows to the figures reported
// at the end of a run.
package summary

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"nypd311/internal/complaint"
	"nypd311/internal/query"
)

// ErrNoData is returned when there are no rows to summarize.
var ErrNoData = errors.New("no data for this selection")

// DefaultTopN is the number of complaint types kept in a Summary.
const DefaultTopN = 10

// Count is one value and how often it occurred.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Summary holds the aggregates for one result table.
type Summary struct {
	Rows int `json:"rows"`
	// TotalRecords is the fetched count before dedupe and validation.
	TotalRecords   int     `json:"total_records"`
	TopTypes       []Count `json:"top_complaint_types"`
	Weekdays       []Count `json:"weekdays"`
	Months         []Count `json:"months"`
	BusiestWeekday Count   `json:"busiest_weekday"`
	BusiestMonth   Count   `json:"busiest_month"`
}

// counter counts values and remembers the order they were first seen.
type counter struct {
	order []string
	n     map[string]int
}

func newCounter() *counter { return &counter{n: make(map[string]int)} }

func (c *counter) add(v string) {
	if _, ok := c.n[v]; !ok {
		c.order = append(c.order, v)
	}
	c.n[v]++
}

// sorted returns counts descending; equal counts keep first-seen order.
func (c *counter) sorted() []Count {
	out := make([]Count, len(c.order))
	for i, v := range c.order {
		out[i] = Count{Value: v, Count: c.n[v]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Summarize computes the top topN complaint types and the busiest weekday
// and month. Ties go to the value encountered first in rows. A topN below 1
// keeps every type. totalRecords is carried through for the sentence.
func Summarize(rows []complaint.Row, totalRecords, topN int) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, ErrNoData
	}
	types, days, months := newCounter(), newCounter(), newCounter()
	for _, r := range rows {
		types.add(r.ComplaintType)
		days.add(r.DayOfWeek.String())
		months.add(r.Month.String())
	}

	s := Summary{
		Rows:         len(rows),
		TotalRecords: totalRecords,
		TopTypes:     types.sorted(),
		Weekdays:     days.sorted(),
		Months:       months.sorted(),
	}
	if topN > 0 && len(s.TopTypes) > topN {
		s.TopTypes = s.TopTypes[:topN]
	}
	s.BusiestWeekday = s.Weekdays[0]
	s.BusiestMonth = s.Months[0]
	return s, nil
}

// Sentence renders the closing summary line for a run over r.
func Sentence(s Summary, r query.Range) string {
	p := message.NewPrinter(language.English)

	var b strings.Builder
	years := strconv.Itoa(r.StartYear) + "-" + strconv.Itoa(r.EndYear)
	b.WriteString(p.Sprintf("%s %s: %d NYPD complaints (%d fetched). ", r.Borough.FilterValue(), years, s.Rows, s.TotalRecords))
	b.WriteString(p.Sprintf("Busiest weekday %s (%d), busiest month %s (%d).",
		s.BusiestWeekday.Value, s.BusiestWeekday.Count, s.BusiestMonth.Value, s.BusiestMonth.Count))

	top := s.TopTypes
	if len(top) > 3 {
		top = top[:3]
	}
	if len(top) > 0 {
		parts := make([]string, len(top))
		for i, c := range top {
			parts[i] = p.Sprintf("%s (%d)", c.Value, c.Count)
		}
		b.WriteString(" Top complaint types: ")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(".")
	}
	return b.String()
}
