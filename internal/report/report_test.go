package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nypd311/internal/complaint"
	"nypd311/internal/summary"
	"nypd311/pkg/records"
)

type entry struct {
	at  time.Time
	typ string
}

func mkRows(t *testing.T, entries ...entry) []complaint.Row {
	t.Helper()
	out := make([]complaint.Row, 0, len(entries))
	for _, s := range entries {
		v, err := complaint.NewValid(complaint.FromRecord(records.Record{
			complaint.CreatedDate:   s.at,
			complaint.ComplaintType: s.typ,
		}))
		require.NoError(t, err)
		out = append(out, v.Derive())
	}
	return out
}

func fixture(t *testing.T) []complaint.Row {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 12, 0, 0, 0, time.UTC) }
	return mkRows(t,
		entry{d(2019, time.December, 31), "Noise"},
		entry{d(2020, time.January, 5), "Noise"},
		entry{d(2020, time.January, 6), "Illegal Parking"},
		entry{d(2020, time.June, 1), "Noise"},
	)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	out, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return out
}

type recordingNotifier struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, a Artifact) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.names = append(n.names, a.Name)
	return n.err
}

func TestTables(t *testing.T) {
	rows := fixture(t)

	assert.Equal(t, [][]string{
		{"month", "complaints"},
		{"2019-12", "1"},
		{"2020-01", "2"},
		{"2020-06", "1"},
	}, MonthlySeries(rows))

	assert.Equal(t, [][]string{
		{"rank", "complaint_type", "complaints"},
		{"1", "Noise", "3"},
		{"2", "Illegal Parking", "1"},
	}, TopTypes(rows))

	hm := Heatmap(rows)
	require.Len(t, hm, 3)
	assert.Equal(t, []string{"year", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}, hm[0])
	assert.Equal(t, []string{"2019", "0", "0", "0", "0", "0", "0", "0", "0", "0", "0", "0", "1"}, hm[1])
	assert.Equal(t, []string{"2020", "2", "0", "0", "0", "0", "1", "0", "0", "0", "0", "0", "0"}, hm[2])
}

func TestGenerate_WritesAllArtifactsAndNotifies(t *testing.T) {
	dir := t.TempDir()
	n := &recordingNotifier{err: errors.New("no display")}

	arts, err := Generate(context.Background(), dir, fixture(t), 9, Options{Notifier: n, Log: zerolog.Nop()})
	require.NoError(t, err)

	require.Len(t, arts, 3)
	assert.Equal(t, "monthly_series", arts[0].Name)
	assert.Equal(t, "top_complaint_types", arts[1].Name)
	assert.Equal(t, "heatmap_year_month", arts[2].Name)
	assert.ElementsMatch(t, []string{"monthly_series", "top_complaint_types", "heatmap_year_month"}, n.names)

	for _, a := range arts {
		assert.Equal(t, dir, filepath.Dir(a.Path))
		assert.Len(t, readCSV(t, a.Path), a.Rows+1)
		assert.Equal(t, 9, a.TotalRecords)
	}
}

func TestGenerate_NoData(t *testing.T) {
	dir := t.TempDir()
	_, err := Generate(context.Background(), dir, nil, 4, Options{Log: zerolog.Nop()})
	assert.ErrorIs(t, err, summary.ErrNoData)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerate_ExistingArtifactFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, HeatmapFile), nil, 0o644))

	_, err := Generate(context.Background(), dir, fixture(t), 3, Options{Notifier: &recordingNotifier{}, Log: zerolog.Nop()})
	assert.ErrorContains(t, err, "heatmap_year_month")
}

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"linux", "xdg-open", []string{"/r/a.csv"}},
		{"darwin", "open", []string{"/r/a.csv"}},
		{"windows", "cmd", []string{"/c", "start", "", "/r/a.csv"}},
	}
	for _, tt := range tests {
		name, args, err := OpenCommand(tt.goos, "/r/a.csv")
		require.NoError(t, err, tt.goos)
		assert.Equal(t, tt.name, name)
		assert.Equal(t, tt.args, args)
	}
	_, _, err := OpenCommand("plan9", "/r/a.csv")
	assert.Error(t, err)
}

func TestOpenNotifier_RunsViewer(t *testing.T) {
	var got []string
	n := OpenNotifier{
		Log:  zerolog.Nop(),
		GOOS: "linux",
		Run: func(_ context.Context, name string, args ...string) error {
			got = append([]string{name}, args...)
			return nil
		},
	}
	require.NoError(t, n.Notify(context.Background(), Artifact{Name: "x", Path: "/tmp/x.csv"}))
	assert.Equal(t, []string{"xdg-open", "/tmp/x.csv"}, got)

	n.Run = func(context.Context, string, ...string) error { return errors.New("not found") }
	assert.ErrorContains(t, n.Notify(context.Background(), Artifact{Path: "/tmp/x.csv"}), "not found")
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"p2019", "p2020"})
	assert.Len(t, a, 16)
	assert.Equal(t, a, Fingerprint([]string{"p2019", "p2020"}))
	assert.NotEqual(t, a, Fingerprint([]string{"p2020", "p2019"}))
	assert.NotEqual(t, a, Fingerprint([]string{"p2019p2020"}))
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	m := NewManifest(time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("EST", -5*3600)))
	m.Query = Query{Borough: "BRONX", StartYear: 2019, EndYear: 2020, PageLimit: 5000}
	m.SetPerYear(map[int]int{2020: 3})
	m.SetFailures(map[int]string{2019: "timeout"})
	m.Counts = Counts{TotalRecords: 3, RowsBefore: 3, RowsAfter: 2, Dropped: 1, Exported: 2}

	path, err := WriteManifest(dir, m)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var back Manifest
	require.NoError(t, json.Unmarshal(b, &back))

	_, err = uuid.Parse(back.RunID)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC), back.CreatedAt)
	assert.Equal(t, map[string]int{"2020": 3}, back.PerYear)
	assert.Equal(t, map[string]string{"2019": "timeout"}, back.Failures)
	assert.Equal(t, 1, back.Counts.Dropped)

	m.SetFailures(nil)
	assert.Nil(t, m.Failures)
}
