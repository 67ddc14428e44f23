// Package validate drops complaint drafts that lack a required field.
package validate

import (
	"nypd311/internal/complaint"
)

// Report counts the rows around validation. MissingBy attributes each dropped
// row to the first required field it lacked.
type Report struct {
	Before    int            `json:"rows_before"`
	After     int            `json:"rows_after"`
	Dropped   int            `json:"dropped"`
	MissingBy map[string]int `json:"missing_by_field,omitempty"`
}

// Validator checks required fields. created_date and complaint_type are
// always required.
type Validator struct {
	required []string
}

// New returns a Validator for required plus complaint.DefaultRequired.
func New(required []string) *Validator {
	seen := make(map[string]struct{})
	var fields []string
	for _, f := range append(append([]string{}, complaint.DefaultRequired...), required...) {
		if _, ok := seen[f]; ok || f == "" {
			continue
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}
	return &Validator{required: fields}
}

// Required returns the effective required fields.
func (v *Validator) Required() []string {
	return append([]string(nil), v.required...)
}

// Validate keeps, in order, every draft carrying all required fields.
// Surviving drafts are wrapped unchanged.
func (v *Validator) Validate(drafts []complaint.Draft) ([]complaint.Valid, Report) {
	rep := Report{Before: len(drafts)}
	out := make([]complaint.Valid, 0, len(drafts))
	for _, d := range drafts {
		if f, ok := v.firstMissing(d); ok {
			if rep.MissingBy == nil {
				rep.MissingBy = make(map[string]int)
			}
			rep.MissingBy[f]++
			continue
		}
		valid, err := complaint.NewValid(d)
		if err != nil {
			// unreachable: DefaultRequired is always checked above
			continue
		}
		out = append(out, valid)
	}
	rep.After = len(out)
	rep.Dropped = rep.Before - rep.After
	return out, rep
}

func (v *Validator) firstMissing(d complaint.Draft) (string, bool) {
	for _, f := range v.required {
		if d.Missing(f) {
			return f, true
		}
	}
	return "", false
}
