package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// ManifestFile is the manifest's file name inside the run directory.
const ManifestFile = "manifest.json"

// Query echoes the request that produced a run.
type Query struct {
	Borough   string `json:"borough"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
	PageLimit int    `json:"page_limit"`
}

// Counts are the row counts collected along the pipeline.
type Counts struct {
	TotalRecords int `json:"total_records"`
	Duplicates   int `json:"duplicates"`
	RowsBefore   int `json:"rows_before_validation"`
	RowsAfter    int `json:"rows_after_validation"`
	Dropped      int `json:"dropped"`
	Exported     int `json:"exported"`
}

// Manifest describes one run directory.
type Manifest struct {
	RunID          string            `json:"run_id"`
	CreatedAt      time.Time         `json:"created_at"`
	Query          Query             `json:"query"`
	Fingerprint    string            `json:"fingerprint"`
	PerYear        map[string]int    `json:"per_year"`
	Failures       map[string]string `json:"failures,omitempty"`
	Counts         Counts            `json:"counts"`
	DroppedColumns []string          `json:"dropped_columns,omitempty"`
	Export         *Artifact         `json:"export,omitempty"`
	Artifacts      []Artifact        `json:"artifacts,omitempty"`
}

// NewManifest returns a manifest with a fresh run ID.
func NewManifest(now time.Time) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		CreatedAt: now.UTC(),
		PerYear:   map[string]int{},
	}
}

// SetPerYear records the fetched count per year.
func (m *Manifest) SetPerYear(perYear map[int]int) {
	m.PerYear = make(map[string]int, len(perYear))
	for y, n := range perYear {
		m.PerYear[strconv.Itoa(y)] = n
	}
}

// SetFailures records the reason each failed year failed.
func (m *Manifest) SetFailures(failures map[int]string) {
	if len(failures) == 0 {
		m.Failures = nil
		return
	}
	m.Failures = make(map[string]string, len(failures))
	for y, reason := range failures {
		m.Failures[strconv.Itoa(y)] = reason
	}
}

// Fingerprint hashes the chunk predicates in order. Identical queries share a
// fingerprint.
func Fingerprint(predicates []string) string {
	h := xxh3.New()
	for _, p := range predicates {
		_, _ = h.WriteString(p)
		_, _ = h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// WriteManifest writes m as indented JSON to dir/manifest.json.
func WriteManifest(dir string, m *Manifest) (string, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: encode manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("report: write manifest: %w", err)
	}
	return path, nil
}
