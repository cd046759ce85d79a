package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fortuna/mlbh2h/internal/report"
	"github.com/fortuna/mlbh2h/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 1050*time.Millisecond, cfg.RequestInterval)
	assert.Equal(t, "8080", cfg.RestPort)
	assert.Equal(t, schedule.DefaultSeasonStart, cfg.SeasonStart)
	assert.Equal(t, schedule.DefaultNoGameDates, cfg.NoGameDates)
	assert.Equal(t, "0 10 * * *", cfg.DailyIngestCron)
	assert.Equal(t, report.DefaultThresholds, cfg.Thresholds())
	assert.Empty(t, cfg.RedisURL)

	cal, err := cfg.Calendar()
	require.NoError(t, err)
	assert.Equal(t, "2019-03-20", schedule.FormatDate(cal.SeasonStart()))
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("SPORTRADAR_API_KEY", "bare-key")
	t.Setenv("MLBH2H_REQUEST_INTERVAL", "2s")
	t.Setenv("MLBH2H_BATTER_THRESHOLD", "20")
	t.Setenv("MLBH2H_NO_GAME_DATES", "2020-07-01,2020-07-02")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "bare-key", cfg.SportradarAPIKey)
	assert.Equal(t, 2*time.Second, cfg.RequestInterval)
	assert.Equal(t, 20.0, cfg.BatterThreshold)
	assert.Equal(t, []string{"2020-07-01", "2020-07-02"}, cfg.NoGameDates)
}

func TestPrefixedKeyWinsOverBareKey(t *testing.T) {
	t.Setenv("SPORTRADAR_API_KEY", "bare-key")
	t.Setenv("MLBH2H_SPORTRADAR_API_KEY", "prefixed-key")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "prefixed-key", cfg.SportradarAPIKey)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
season_start: "2020-07-23"
no_game_dates: []
week_start_overrides:
  "2020-07-27": "2020-07-23"
pitcher_threshold: 30
log_format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "2020-07-23", cfg.SeasonStart)
	assert.Equal(t, 30.0, cfg.PitcherThreshold)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "2020-07-23", cfg.WeekStartOverrides["2020-07-27"])
}

func TestLoadRejectsBadCalendar(t *testing.T) {
	t.Setenv("MLBH2H_SEASON_START", "opening day")
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadRejectsMalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("season_start: [unclosed"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}
