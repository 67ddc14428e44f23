// Package transformer composes record-level transforms applied between the
// parser and the typed complaint model.
package transformer

import "nypd311/pkg/records"

// Transformer maps a batch of records to a new batch. Implementations may
// mutate records in place and may filter by reslicing the input.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Func adapts a plain function to Transformer.
type Func func([]records.Record) []records.Record

// Apply calls f.
func (f Func) Apply(in []records.Record) []records.Record { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs each transformer in order, feeding each output to the next.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
