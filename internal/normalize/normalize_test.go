package normalize

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nypd311/internal/complaint"
	"nypd311/pkg/records"
)

func raw() []records.Record {
	return []records.Record{
		{
			"unique_key":     "1",
			"created_date":   "2020-01-05T10:00:00.000",
			"complaint_type": "Noise",
			"agency":         "NYPD",
			"latitude":       "40.61",
			"location_type":  "Street/Sidewalk",
		},
		{
			"unique_key":     "2",
			"created_date":   "garbage",
			"complaint_type": " Illegal Parking ",
			"bbl":            "3000010001",
			"latitude":       "n/a",
		},
	}
}

func TestNormalize_ProjectionAndTyping(t *testing.T) {
	in := raw()
	drafts, rep := New(complaint.Columns{}, zerolog.Nop()).Normalize(in)

	require.Len(t, drafts, 2)
	assert.Equal(t, 2, rep.Rows)
	assert.Equal(t, []string{"agency", "bbl", "latitude"}, rep.Dropped)
	assert.Contains(t, rep.Observed, "unique_key")

	require.NotNil(t, drafts[0].CreatedDate)
	assert.Equal(t, time.Date(2020, 1, 5, 10, 0, 0, 0, time.UTC), *drafts[0].CreatedDate)
	assert.Nil(t, drafts[0].Latitude)
	assert.Equal(t, "Street/Sidewalk", drafts[0].Value(complaint.LocationType))

	assert.Nil(t, drafts[1].CreatedDate)
	assert.Equal(t, "Illegal Parking", drafts[1].Value(complaint.ComplaintType))
	assert.Equal(t, complaint.UnknownLocationType, drafts[1].Value(complaint.LocationType))

	assert.Equal(t, "NYPD", in[0]["agency"], "input must not be modified")
}

func TestNormalize_ProjectionIsSubsetOfKeepList(t *testing.T) {
	cols := complaint.Columns{Coordinates: true}
	drafts, _ := New(cols, zerolog.Nop()).Normalize(raw())

	for _, d := range drafts {
		for _, f := range []string{"agency", "bbl"} {
			assert.Nil(t, d.Value(f))
		}
	}
	require.NotNil(t, drafts[0].Latitude)
	assert.InDelta(t, 40.61, *drafts[0].Latitude, 1e-9)
	assert.Nil(t, drafts[1].Latitude)
}

func TestNormalize_OnlyLocationTypeIsFilled(t *testing.T) {
	drafts, _ := New(complaint.Columns{}, zerolog.Nop()).Normalize([]records.Record{
		{"created_date": "2020-01-05", "complaint_type": "Noise"},
	})
	d := drafts[0]
	assert.Equal(t, complaint.UnknownLocationType, d.Value(complaint.LocationType))
	for _, f := range []string{complaint.Status, complaint.Descriptor, complaint.Borough, complaint.ClosedDate} {
		assert.True(t, d.Missing(f), f)
	}
}

func TestNormalize_Empty(t *testing.T) {
	drafts, rep := New(complaint.Columns{}, zerolog.Nop()).Normalize(nil)
	assert.Empty(t, drafts)
	assert.Zero(t, rep.Rows)
	assert.Empty(t, rep.Dropped)
}
