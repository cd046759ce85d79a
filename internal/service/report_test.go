package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fortuna/mlbh2h/internal/ingest"
	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/fortuna/mlbh2h/internal/logger"
	"github.com/fortuna/mlbh2h/internal/reconciliation"
	"github.com/fortuna/mlbh2h/internal/report"
	"github.com/fortuna/mlbh2h/internal/schedule"
	"github.com/fortuna/mlbh2h/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	data      map[string][]stats.RawPlayer
	requested [][]string
	err       error
}

func (f *fakeLoader) LoadDates(_ context.Context, dates []string) ([]ingest.DateRecords, error) {
	f.requested = append(f.requested, dates)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]ingest.DateRecords, 0, len(dates))
	for _, d := range dates {
		var players []stats.RawPlayer
		for _, p := range f.data[d] {
			players = append(players, p.Clone())
		}
		out = append(out, ingest.DateRecords{Date: d, Source: ingest.SourceFile, Players: players})
	}
	return out, nil
}

func bat(name, pos string, s stats.BatterStats) stats.RawPlayer {
	return stats.RawPlayer{Name: name, Position: pos, PrimaryPosition: pos, BatterStats: &s}
}

func pitch(name string, s stats.PitcherStats) stats.RawPlayer {
	return stats.RawPlayer{Name: name, Position: "P", PrimaryPosition: "SP", PitcherStats: &s}
}

func newTestService(t *testing.T) (*ReportService, *fakeLoader) {
	t.Helper()
	loader := &fakeLoader{data: map[string][]stats.RawPlayer{
		"2019-06-04": {
			bat("Trey Mancini", "RF", stats.BatterStats{Runs: 1, HomeRuns: 1}),
			pitch("Blake Snell", stats.PitcherStats{InningsPitched: 6, Strikeouts: 10}),
			bat("Some Rookie", "SS", stats.BatterStats{Runs: 1}),
		},
		"2019-06-05": {
			bat("Trey Mancini", "RF", stats.BatterStats{Runs: 2, Hits: 3, HomeRuns: 1, RunsBattedIn: 2}),
			bat("Christian Yelich", "RF", stats.BatterStats{Runs: 1}),
		},
	}}

	svc := NewReportService(league.NewStore(t.TempDir()), loader, schedule.DefaultCalendar(),
		report.DefaultThresholds, logger.Discard())
	return svc, loader
}

func names(players []reconciliation.FantasyPlayer) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.Player.Name)
	}
	return out
}

func TestRankedSingleDay(t *testing.T) {
	svc, loader := newTestService(t)

	ranked, err := svc.Ranked(context.Background(), Request{League: league.SampleLeague, Date: "2019-06-05", Range: schedule.RangeDay})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2019-06-05"}}, loader.requested)
	assert.Equal(t, []string{"Trey Mancini", "Christian Yelich"}, names(ranked.Players))
	assert.InDelta(t, 13.5, ranked.Players[0].FantasyPoints, 1e-9)
	assert.Equal(t, league.SampleScoringRule().HeaderItems(), ranked.Headers)
}

func TestRankedWeekMergesDates(t *testing.T) {
	svc, loader := newTestService(t)

	ranked, err := svc.Ranked(context.Background(), Request{League: league.SampleLeague, Date: "2019-06-05", Range: schedule.RangeWeek})
	require.NoError(t, err)
	require.Len(t, loader.requested, 1)
	assert.Len(t, loader.requested[0], 7)

	assert.Equal(t, []string{"Blake Snell", "Trey Mancini", "Christian Yelich"}, names(ranked.Players))
	assert.InDelta(t, 26.0, ranked.Players[0].FantasyPoints, 1e-9)
	assert.InDelta(t, 19.5, ranked.Players[1].FantasyPoints, 1e-9)
	assert.Equal(t, uint(2), ranked.Players[1].Player.BatterStats.HomeRuns)
}

func TestRankedShowAll(t *testing.T) {
	svc, _ := newTestService(t)

	ranked, err := svc.Ranked(context.Background(), Request{League: league.SampleLeague, Date: "2019-06-04", Range: schedule.RangeDay, ShowAll: true})
	require.NoError(t, err)
	require.Len(t, ranked.Players, 3)
	assert.Equal(t, reconciliation.FreeAgentTeam, ranked.Players[2].Team)
}

func TestTop(t *testing.T) {
	svc, _ := newTestService(t)

	top, err := svc.Top(context.Background(), Request{League: league.SampleLeague, Date: "2019-06-05", Range: schedule.RangeWeek, TopN: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, top.N)
	assert.Equal(t, []string{"Trey Mancini"}, names(top.Batters))
	assert.Equal(t, []string{"Blake Snell"}, names(top.Pitchers))
	assert.NotContains(t, top.BatterHeaders, "P.K")
	assert.NotContains(t, top.PitcherHeaders, "B.HR")

	top, err = svc.Top(context.Background(), Request{League: league.SampleLeague, Date: "2019-06-05", Range: schedule.RangeDay})
	require.NoError(t, err)
	assert.Equal(t, DefaultTopN, top.N)
}

func TestTeams(t *testing.T) {
	svc, _ := newTestService(t)

	totals, err := svc.Teams(context.Background(), Request{League: league.SampleLeague, Date: "2019-06-05", Range: schedule.RangeWeek})
	require.NoError(t, err)
	assert.Equal(t, []report.TeamTotal{
		{Team: "LA Bulls", Points: 26},
		{Team: "NY Hotdogs", Points: 19.5},
		{Team: "Chicago Pizzas", Points: 2},
	}, totals)
}

func TestOutstandingScansWholeSeason(t *testing.T) {
	svc, loader := newTestService(t)

	hits, err := svc.Outstanding(context.Background(), Request{League: league.SampleLeague, Date: "2019-06-05", Range: schedule.RangeDay})
	require.NoError(t, err)

	want, err := schedule.DefaultCalendar().DateStrs("2019-06-05", schedule.RangeAll)
	require.NoError(t, err)
	assert.Equal(t, [][]string{want}, loader.requested)

	require.Len(t, hits, 1)
	assert.Equal(t, "2019-06-04", hits[0].Date)
	assert.Equal(t, "Blake Snell", hits[0].Player.Player.Name)
}

func TestWeekly(t *testing.T) {
	svc, loader := newTestService(t)

	grid, err := svc.Weekly(context.Background(), Request{League: league.SampleLeague, Date: "2019-06-05"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2019-06-03", "2019-06-04", "2019-06-05"}}, loader.requested)
	assert.Equal(t, []string{"LA Bulls", "Chicago Pizzas", "NY Hotdogs", "Seattle Coffees"}, grid.Teams)
	require.Len(t, grid.Rows, 3)
	assert.Equal(t, []float64{0, 0, 0, 0}, grid.Rows[0].Points)
	assert.Equal(t, []float64{26, 2, 19.5, 0}, grid.Totals)
}

func TestUnknownLeague(t *testing.T) {
	svc, loader := newTestService(t)

	_, err := svc.Ranked(context.Background(), Request{League: "nope", Date: "2019-06-05", Range: schedule.RangeDay})
	assert.ErrorIs(t, err, league.ErrLeagueNotFound)
	assert.Empty(t, loader.requested)

	_, err = svc.Headers("nope")
	assert.ErrorIs(t, err, league.ErrLeagueNotFound)
}

func TestLoaderErrorCarriesLeague(t *testing.T) {
	svc, loader := newTestService(t)
	loader.err = errors.New("api key missing")

	_, err := svc.Ranked(context.Background(), Request{League: league.SampleLeague, Date: "2019-06-05", Range: schedule.RangeDay})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "league sample")
}
