package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nypd311/internal/complaint"
	"nypd311/internal/export"
	"nypd311/pkg/records"
)

func TestCreateTableSQL(t *testing.T) {
	got := CreateTableSQL("complaints", []string{complaint.UniqueKey, complaint.Latitude, complaint.Year})
	assert.Equal(t, `CREATE TABLE "complaints" ("unique_key" TEXT, "latitude" REAL, "year" INTEGER)`, got)
}

func TestExport_RoundTripsThroughSQLite(t *testing.T) {
	e, err := export.New(Kind)
	require.NoError(t, err)
	assert.Equal(t, ".db", e.Ext())

	lat := 40.7
	var rows []complaint.Row
	for i := 0; i < 5; i++ {
		rec := records.Record{
			complaint.UniqueKey:     string(rune('a' + i)),
			complaint.CreatedDate:   time.Date(2021, 3, 1+i, 8, 0, 0, 0, time.UTC),
			complaint.ComplaintType: "Noise",
		}
		if i == 0 {
			rec[complaint.Latitude] = lat
		}
		v, err := complaint.NewValid(complaint.FromRecord(rec))
		require.NoError(t, err)
		rows = append(rows, v.Derive())
	}

	header := complaint.Columns{Coordinates: true}.Header()
	path := filepath.Join(t.TempDir(), "complaints.db")
	n, err := Exporter{Table: DefaultTable, BatchSize: 2}.Export(context.Background(), path, header, rows)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM complaints`).Scan(&count))
	assert.Equal(t, 5, count)

	var (
		key     string
		created string
		month   int
		latOut  sql.NullFloat64
		status  sql.NullString
	)
	require.NoError(t, db.QueryRow(
		`SELECT unique_key, created_date, month, latitude, status FROM complaints ORDER BY unique_key LIMIT 1`,
	).Scan(&key, &created, &month, &latOut, &status))
	assert.Equal(t, "a", key)
	assert.Equal(t, "2021-03-01T08:00:00", created)
	assert.Equal(t, 3, month)
	assert.True(t, latOut.Valid)
	assert.InDelta(t, lat, latOut.Float64, 1e-9)
	assert.False(t, status.Valid)
}

func TestExport_RefusesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "complaints.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := Exporter{}.Export(context.Background(), path, []string{complaint.UniqueKey}, nil)
	assert.ErrorContains(t, err, "already exists")
}
