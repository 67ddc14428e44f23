// Package rundir names and creates the per-run output directory.
package rundir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"nypd311/internal/query"
)

// TimeLayout is the timestamp suffix of a run directory name.
const TimeLayout = "20060102T150405"

const maxAttempts = 100

// Name returns "<BOROUGH>_<start>_<end>_<YYYYMMDDTHHMMSS>" for r at now.
func Name(r query.Range, now time.Time) string {
	return fmt.Sprintf("%s_%d_%d_%s", r.Borough, r.StartYear, r.EndYear, now.Format(TimeLayout))
}

// Create makes a fresh directory named Name(r, now) under root and returns
// its path. If that name is taken, a numeric suffix is added; an existing
// directory is never reused.
func Create(root string, r query.Range, now time.Time) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("rundir: create root: %w", err)
	}
	base := filepath.Join(root, Name(r, now))
	for i := 0; i < maxAttempts; i++ {
		path := base
		if i > 0 {
			path = base + "-" + strconv.Itoa(i)
		}
		err := os.Mkdir(path, 0o755)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("rundir: %w", err)
		}
	}
	return "", fmt.Errorf("rundir: %s: no free name after %d attempts", base, maxAttempts)
}
