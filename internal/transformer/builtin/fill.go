package builtin

import "nypd311/pkg/records"

// Fill sets a default for each field that is absent, nil or empty. Present
// values are never touched.
type Fill struct {
	Defaults map[string]any
}

func (f Fill) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for field, def := range f.Defaults {
			if !r.Present(field) {
				r[field] = def
			}
		}
	}
	return in
}
