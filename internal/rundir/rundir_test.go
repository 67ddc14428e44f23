package rundir

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nypd311/internal/query"
)

var (
	r   = query.Range{Borough: query.StatenIsland, StartYear: 2019, EndYear: 2021, PageLimit: 10}
	now = time.Date(2024, 3, 9, 7, 5, 2, 0, time.UTC)
)

func TestName(t *testing.T) {
	assert.Equal(t, "STATEN_ISLAND_2019_2021_20240309T070502", Name(r, now))
}

func TestCreate_FreshDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "output")

	first, err := Create(root, r, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "STATEN_ISLAND_2019_2021_20240309T070502"), first)

	second, err := Create(root, r, now)
	require.NoError(t, err)
	assert.Equal(t, first+"-1", second)

	for _, p := range []string{first, second} {
		fi, err := os.Stat(p)
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}
}

func TestCreate_RootIsAFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "output")
	require.NoError(t, os.WriteFile(root, nil, 0o644))

	_, err := Create(root, r, now)
	assert.Error(t, err)
}
