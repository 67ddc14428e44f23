package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nypd311/internal/complaint"
	"nypd311/internal/query"
	"nypd311/pkg/records"
)

func row(t *testing.T, created time.Time, typ string) complaint.Row {
	t.Helper()
	v, err := complaint.NewValid(complaint.FromRecord(records.Record{
		complaint.CreatedDate:   created,
		complaint.ComplaintType: typ,
	}))
	require.NoError(t, err)
	return v.Derive()
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }

func TestSummarize_Scenario(t *testing.T) {
	rows := []complaint.Row{
		row(t, day(2020, time.January, 5), "Noise"),
		row(t, day(2020, time.January, 5), "Noise"),
		row(t, day(2020, time.June, 1), "Illegal Parking"),
	}

	s, err := Summarize(rows, 5, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 5, s.TotalRecords)
	assert.Equal(t, []Count{{"Noise", 2}}, s.TopTypes)
	assert.Equal(t, Count{"January", 2}, s.BusiestMonth)
	assert.Equal(t, Count{"Sunday", 2}, s.BusiestWeekday)
}

func TestSummarize_TiesKeepFirstEncountered(t *testing.T) {
	rows := []complaint.Row{
		row(t, day(2021, time.March, 3), "Blocked Driveway"), // Wednesday
		row(t, day(2021, time.February, 1), "Noise"),         // Monday
		row(t, day(2021, time.February, 2), "Noise"),         // Tuesday
		row(t, day(2021, time.March, 1), "Blocked Driveway"), // Monday
	}

	s, err := Summarize(rows, len(rows), 0)
	require.NoError(t, err)

	assert.Equal(t, []Count{{"Blocked Driveway", 2}, {"Noise", 2}}, s.TopTypes)
	assert.Equal(t, Count{"March", 2}, s.BusiestMonth)
	assert.Equal(t, Count{"Monday", 2}, s.BusiestWeekday)
	assert.Equal(t, []Count{{"Monday", 2}, {"Wednesday", 1}, {"Tuesday", 1}}, s.Weekdays)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(nil, 10, DefaultTopN)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, "no data for this selection", ErrNoData.Error())
}

func TestSentence(t *testing.T) {
	s := Summary{
		Rows:           12345,
		TotalRecords:   13000,
		TopTypes:       []Count{{"Noise - Residential", 4000}, {"Illegal Parking", 3000}, {"Blocked Driveway", 1000}, {"Other", 5}},
		BusiestWeekday: Count{"Friday", 2100},
		BusiestMonth:   Count{"July", 1500},
	}
	got := Sentence(s, query.Range{Borough: query.StatenIsland, StartYear: 2019, EndYear: 2021})

	assert.Equal(t,
		"STATEN ISLAND 2019-2021: 12,345 NYPD complaints (13,000 fetched). Busiest weekday Friday (2,100), busiest month July (1,500)."+
			" Top complaint types: Noise - Residential (4,000), Illegal Parking (3,000), Blocked Driveway (1,000).",
		got)
}
