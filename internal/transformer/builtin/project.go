// Package builtin contains reusable record transformers.
package builtin

import (
	"sort"

	"nypd311/pkg/records"
)

// Project keeps only the Keep fields of every record. Field names seen in the
// input and the ones removed are collected across calls, so a caller can
// report the column diagnostics once per run.
type Project struct {
	Keep []string

	keep     map[string]struct{}
	observed map[string]struct{}
	dropped  map[string]struct{}
}

// NewProject returns a Project for the given keep-list.
func NewProject(keep []string) *Project {
	p := &Project{
		Keep:     keep,
		keep:     make(map[string]struct{}, len(keep)),
		observed: make(map[string]struct{}),
		dropped:  make(map[string]struct{}),
	}
	for _, f := range keep {
		p.keep[f] = struct{}{}
	}
	return p
}

// Apply deletes every non-kept field in place.
func (p *Project) Apply(in []records.Record) []records.Record {
	if p.keep == nil {
		*p = *NewProject(p.Keep)
	}
	for _, r := range in {
		for k := range r {
			p.observed[k] = struct{}{}
			if _, ok := p.keep[k]; !ok {
				p.dropped[k] = struct{}{}
				delete(r, k)
			}
		}
	}
	return in
}

// Observed returns the sorted set of field names seen so far.
func (p *Project) Observed() []string { return sortedKeys(p.observed) }

// Dropped returns the sorted set of field names removed so far.
func (p *Project) Dropped() []string { return sortedKeys(p.dropped) }

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
