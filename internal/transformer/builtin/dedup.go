package builtin

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"nypd311/pkg/records"
)

// Policies accepted by DeDup.
const (
	KeepFirst    = "keep-first"
	KeepLast     = "keep-last"
	MostComplete = "most-complete"
)

// DeDup collapses duplicate records by a configured key and chooses a
// winner according to a policy:
//
//   - "keep-first"   : keep the earliest occurrence in the batch (default)
//   - "keep-last"    : keep the latest occurrence in the batch
//   - "most-complete": keep the record with the most non-empty fields;
//     ties keep the earlier record
//
// Keys are the concatenation of the configured fields, hashed with xxh3-128.
// Records with a missing, nil or empty key field are outside the de-dup domain and pass through.
// Output preserves input order of the surviving records.
type DeDup struct {
	// Keys are the field names forming the identity, e.g. ["unique_key"].
	Keys []string

	// Policy selects the winner among duplicates; KeepFirst when empty.
	Policy string
}

// Apply returns a new slice holding only the winning record for each key.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = KeepFirst
	}

	type slot struct {
		index int
		score int
	}
	winners := make(map[xxh3.Uint128]slot, len(in))
	keep := make([]bool, len(in))

	var b strings.Builder
	for i, r := range in {
		key, ok := d.keyOf(&b, r)
		if !ok {
			keep[i] = true
			continue
		}
		prev, exists := winners[key]
		switch {
		case !exists:
			winners[key] = slot{index: i, score: completeness(r)}
		case policy == KeepLast:
			winners[key] = slot{index: i}
		case policy == MostComplete:
			if s := completeness(r); s > prev.score {
				winners[key] = slot{index: i, score: s}
			}
		}
	}
	for _, s := range winners {
		keep[s.index] = true
	}

	out := make([]records.Record, 0, len(winners))
	for i, r := range in {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}

func (d DeDup) keyOf(b *strings.Builder, r records.Record) (xxh3.Uint128, bool) {
	b.Reset()
	for i, k := range d.Keys {
		if !r.Present(k) {
			return xxh3.Uint128{}, false
		}
		if i > 0 {
			b.WriteByte('\x1f')
		}
		switch t := r[k].(type) {
		case string:
			b.WriteString(t)
		default:
			b.WriteString(fmt.Sprint(t))
		}
	}
	return xxh3.HashString128(b.String()), true
}

// completeness counts non-empty values.
func completeness(r records.Record) int {
	n := 0
	for k := range r {
		if r.Present(k) {
			n++
		}
	}
	return n
}
