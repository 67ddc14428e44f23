package builtin

import (
	"strings"

	"nypd311/pkg/records"
)

var spaceCleaner = strings.NewReplacer("\u00c2\u00a0", " ", "\u00a0", " ")

// Normalize trims string values and replaces non-breaking spaces. Values that
// end up empty are removed, so "" and absent both read as null downstream.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(spaceCleaner.Replace(s))
			if s == "" {
				delete(r, k)
				continue
			}
			r[k] = s
		}
	}
	return in
}
