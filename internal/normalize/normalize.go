// Package normalize turns raw records into typed complaint drafts: keep-list
// projection, value cleanup, typing and null-fill.
package normalize

import (
	"github.com/rs/zerolog"

	"nypd311/internal/complaint"
	"nypd311/internal/transformer"
	"nypd311/internal/transformer/builtin"
	"nypd311/pkg/records"
)

// Report summarizes one normalization pass.
type Report struct {
	Rows     int      `json:"rows"`
	Observed []string `json:"observed_columns"`
	Dropped  []string `json:"dropped_columns"`
}

// Normalizer projects and types raw records.
type Normalizer struct {
	cols complaint.Columns
	log  zerolog.Logger
}

// New returns a Normalizer for the given column groups.
func New(cols complaint.Columns, log zerolog.Logger) *Normalizer {
	return &Normalizer{cols: cols, log: log}
}

// Normalize converts recs into drafts. The input records are not modified.
// Unparseable timestamps and coordinates become null; a null location_type is
// filled with complaint.UnknownLocationType.
func (n *Normalizer) Normalize(recs []records.Record) ([]complaint.Draft, Report) {
	work := make([]records.Record, len(recs))
	for i, r := range recs {
		work[i] = r.Clone()
	}

	project := builtin.NewProject(n.cols.KeepList())
	types := map[string]string{
		complaint.CreatedDate: builtin.TypeTimestamp,
		complaint.ClosedDate:  builtin.TypeTimestamp,
	}
	if n.cols.Coordinates {
		for _, f := range []string{
			complaint.Latitude,
			complaint.Longitude,
			complaint.XCoordinateStatePlane,
			complaint.YCoordinateStatePlane,
		} {
			types[f] = builtin.TypeFloat
		}
	}

	chain := transformer.Chain{
		project,
		builtin.Normalize{},
		builtin.Coerce{Types: types},
		builtin.Fill{Defaults: map[string]any{complaint.LocationType: complaint.UnknownLocationType}},
	}
	work = chain.Apply(work)

	drafts := make([]complaint.Draft, len(work))
	for i, r := range work {
		drafts[i] = complaint.FromRecord(r)
	}

	rep := Report{
		Rows:     len(drafts),
		Observed: project.Observed(),
		Dropped:  project.Dropped(),
	}
	n.log.Info().
		Int("rows", rep.Rows).
		Int("observed_columns", len(rep.Observed)).
		Strs("dropped_columns", rep.Dropped).
		Msg("Normalized records")
	n.log.Debug().Strs("columns", rep.Observed).Msg("Raw columns")
	return drafts, rep
}
