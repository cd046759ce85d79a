package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fortuna/mlbh2h/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlayers() []stats.RawPlayer {
	return []stats.RawPlayer{
		{
			Name:            "Trey Mancini",
			Position:        "OF",
			PrimaryPosition: "RF",
			BatterStats:     &stats.BatterStats{AtBats: 3, Runs: 2, HomeRuns: 1},
		},
		{
			Name:            "Blake Snell",
			Position:        "P",
			PrimaryPosition: "SP",
			PitcherStats:    &stats.PitcherStats{InningsPitched: 5.2, Outs: 17},
		},
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	fc := NewFileCache(t.TempDir())

	_, ok, err := fc.Load("2019-06-05")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, fc.Exists("2019-06-05"))

	require.NoError(t, fc.Save("2019-06-05", samplePlayers()))
	assert.True(t, fc.Exists("2019-06-05"))

	players, ok, err := fc.Load("2019-06-05")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, samplePlayers(), players)
}

func TestFileCacheIsWriteOnce(t *testing.T) {
	fc := NewFileCache(t.TempDir())
	require.NoError(t, fc.Save("2019-06-05", samplePlayers()))

	err := fc.Save("2019-06-05", nil)
	assert.ErrorIs(t, err, ErrStatsFileExists)

	players, _, err := fc.Load("2019-06-05")
	require.NoError(t, err)
	assert.Len(t, players, 2)
}

func TestFileCacheLayout(t *testing.T) {
	dir := t.TempDir()
	fc := NewFileCache(dir)
	assert.Equal(t, filepath.Join(dir, "_stats", "2019-06-05.json"), fc.Path("2019-06-05"))
}

func TestFileCacheCorruptFile(t *testing.T) {
	fc := NewFileCache(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(fc.Path("x")), 0o755))
	require.NoError(t, os.WriteFile(fc.Path("2019-06-05"), []byte("{not json"), 0o644))

	_, _, err := fc.Load("2019-06-05")
	assert.Error(t, err)
}

func TestFileCacheDates(t *testing.T) {
	fc := NewFileCache(t.TempDir())

	dates, err := fc.Dates()
	require.NoError(t, err)
	assert.Empty(t, dates)

	require.NoError(t, fc.Save("2019-06-06", nil))
	require.NoError(t, fc.Save("2019-06-04", nil))
	dates, err = fc.Dates()
	require.NoError(t, err)
	assert.Equal(t, []string{"2019-06-04", "2019-06-06"}, dates)
}

func TestStatsKey(t *testing.T) {
	assert.Equal(t, "mlbh2h:stats:2019-06-05", StatsKey("2019-06-05"))
}

// Runs only against a live server, e.g. MLBH2H_TEST_REDIS_URL=redis://localhost:6379/15
func TestRedisCacheRoundTrip(t *testing.T) {
	url := os.Getenv("MLBH2H_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MLBH2H_TEST_REDIS_URL not set")
	}

	rc, err := NewRedisCache(url, 0)
	require.NoError(t, err)
	defer rc.Close()

	ctx := context.Background()
	const date = "1999-01-01"
	require.NoError(t, rc.DeleteDate(ctx, date))

	_, ok, err := rc.LoadDate(ctx, date)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rc.SaveDate(ctx, date, samplePlayers()))
	players, ok, err := rc.LoadDate(ctx, date)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, samplePlayers(), players)

	require.NoError(t, rc.DeleteDate(ctx, date))
}
