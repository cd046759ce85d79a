package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/mlbh2h/internal/backfill"
	"github.com/fortuna/mlbh2h/internal/cache"
	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/fortuna/mlbh2h/internal/schedule"
	"github.com/fortuna/mlbh2h/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MLBH2H_SPORTRADAR_API_KEY", "")
	t.Setenv("SPORTRADAR_API_KEY", "")
	t.Setenv("MLBH2H_REDIS_URL", "")
	t.Setenv("MLBH2H_DATABASE_URL", "")

	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestDatesCommand(t *testing.T) {
	out, err := runCLI(t, "dates", "-data-dir", t.TempDir(), "-d", "2019-07-12", "-r", "1w")
	require.NoError(t, err)
	lines := strings.Fields(out)
	require.Len(t, lines, 7)
	assert.Equal(t, "2019-07-12", lines[0])
	assert.NotContains(t, lines, "2019-07-09")

	out, err = runCLI(t, "dates", "-data-dir", t.TempDir(), "-d", "2019-03-28", "-weekly")
	require.NoError(t, err)
	assert.Equal(t, []string{"2019-03-20", "2019-03-21", "2019-03-28"}, strings.Fields(out))
}

func TestReportFromCachedStats(t *testing.T) {
	dir := t.TempDir()
	files := cache.NewFileCache(dir)
	require.NoError(t, files.Save("2019-06-05", []stats.RawPlayer{
		{Name: "Blake Snell", Position: "P", PrimaryPosition: "SP", PitcherStats: &stats.PitcherStats{InningsPitched: 6, Strikeouts: 10}},
		{Name: "Trey Mancini", Position: "RF", PrimaryPosition: "RF", BatterStats: &stats.BatterStats{Runs: 1}},
	}))

	out, err := runCLI(t, "-data-dir", dir, "-d", "2019-06-05", "-f", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Blake Snell")
	assert.Less(t, strings.Index(out, "Blake Snell"), strings.Index(out, "Trey Mancini"))

	out, err = runCLI(t, "report", "-data-dir", dir, "-d", "2019-06-05", "-view", "teams")
	require.NoError(t, err)
	assert.Contains(t, out, "LA Bulls")

	_, err = runCLI(t, "report", "-data-dir", dir, "-d", "2019-06-05", "-view", "pie")
	assert.Error(t, err)
}

func TestReportNeedsAPIKeyForUncachedDates(t *testing.T) {
	_, err := runCLI(t, "report", "-data-dir", t.TempDir(), "-d", "2019-06-05")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestNewLeagueCommand(t *testing.T) {
	dir := t.TempDir()
	input := "2\n" + strings.Repeat("\n", 33) +
		"1\n1\n2\nBulls\nPizzas\nMike Trout\nBlake Snell\nMookie Betts\nChris Sale\n"
	stdin = strings.NewReader(input)
	t.Cleanup(func() { stdin = nil })

	_, err := runCLI(t, "new-league", "-data-dir", dir, "-n", "office")
	require.NoError(t, err)

	store := league.NewStore(dir)
	rule, err := store.LoadScoringRule("office")
	require.NoError(t, err)
	assert.Equal(t, 2.0, rule.Batter.AtBats)

	roster, err := store.LoadRoster("office")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bulls", "Pizzas"}, roster.Teams())

	stdin = strings.NewReader(input)
	_, err = runCLI(t, "new-league", "-data-dir", dir, "-n", "office")
	assert.ErrorIs(t, err, league.ErrLeagueExists)
}

func TestImportRosterFromFile(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "import-roster", "-data-dir", dir, "-l", "yahoo", "-file", "../../internal/ingest/yahoo/testdata/rosters.html")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 teams")

	_, err = runCLI(t, "import-roster", "-data-dir", dir, "-l", "yahoo")
	assert.Error(t, err)
}

func TestBuildSpec(t *testing.T) {
	cal := schedule.DefaultCalendar()
	now := time.Date(2019, 6, 6, 15, 0, 0, 0, time.UTC)

	spec, err := buildSpec(cal, true, "", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, backfill.JobTypeSeason, spec.Type)
	assert.Equal(t, "2019-03-20", schedule.FormatDate(spec.Start))
	assert.Equal(t, "2019-06-05", schedule.FormatDate(spec.End))

	spec, err = buildSpec(cal, false, "2019-06-01", "2019-06-03", "", now)
	require.NoError(t, err)
	assert.Equal(t, backfill.JobTypeDateRange, spec.Type)

	spec, err = buildSpec(cal, false, "", "", "2019-06-01, 2019-06-03", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"2019-06-01", "2019-06-03"}, spec.Dates)

	_, err = buildSpec(cal, false, "2019-06-04", "2019-06-03", "", now)
	assert.Error(t, err)

	_, err = buildSpec(cal, false, "", "", "", now)
	assert.Error(t, err)
}

func TestBackfillDryRun(t *testing.T) {
	out, err := runCLI(t, "backfill", "-data-dir", t.TempDir(), "-start", "2019-07-07", "-end", "2019-07-12", "-dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "3 dates would be loaded")
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCLI(t, "frobnicate")
	assert.Error(t, err)

	out, err := runCLI(t, "help")
	require.NoError(t, err)
	assert.Contains(t, out, "import-roster")
}
