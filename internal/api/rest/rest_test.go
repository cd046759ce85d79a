package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fortuna/mlbh2h/internal/backfill"
	"github.com/fortuna/mlbh2h/internal/ingest"
	"github.com/fortuna/mlbh2h/internal/ingest/sportradar"
	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/fortuna/mlbh2h/internal/logger"
	"github.com/fortuna/mlbh2h/internal/report"
	"github.com/fortuna/mlbh2h/internal/schedule"
	"github.com/fortuna/mlbh2h/internal/service"
	"github.com/fortuna/mlbh2h/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	data map[string][]stats.RawPlayer
	err  error
}

func (f *fakeLoader) LoadDates(_ context.Context, dates []string) ([]ingest.DateRecords, error) {
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

func (f *fakeLoader) LoadDate(ctx context.Context, date string) (ingest.DateRecords, error) {
	days, err := f.LoadDates(ctx, []string{date})
	if err != nil {
		return ingest.DateRecords{}, err
	}
	return days[0], nil
}

type testEnv struct {
	router http.Handler
	loader *fakeLoader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	loader := &fakeLoader{data: map[string][]stats.RawPlayer{
		"2019-06-05": {
			{Name: "Trey Mancini", Position: "RF", PrimaryPosition: "RF", BatterStats: &stats.BatterStats{Runs: 2, Hits: 3, HomeRuns: 1, RunsBattedIn: 2}},
			{Name: "Blake Snell", Position: "P", PrimaryPosition: "SP", PitcherStats: &stats.PitcherStats{InningsPitched: 6, Strikeouts: 10}},
		},
	}}

	leagues := league.NewStore(t.TempDir())
	calendar := schedule.DefaultCalendar()
	reports := service.NewReportService(leagues, loader, calendar, report.DefaultThresholds, logger.Discard())

	handler := NewHandler(reports, leagues, logger.Discard())
	handler.now = func() time.Time { return time.Date(2019, 6, 6, 12, 0, 0, 0, time.UTC) }

	svc := backfill.NewService(backfill.NewMemoryRepository(), backfill.NewRunner(loader, calendar), logger.Discard(),
		backfill.WithPollInterval(10*time.Millisecond))
	svc.Start()
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })

	srv := NewServer("0", handler, svc)
	return &testEnv{router: srv.Handler(), loader: loader}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthDegraded(t *testing.T) {
	loader := &fakeLoader{}
	leagues := league.NewStore(t.TempDir())
	reports := service.NewReportService(leagues, loader, schedule.DefaultCalendar(), report.DefaultThresholds, logger.Discard())
	handler := NewHandler(reports, leagues, logger.Discard())
	handler.AddHealthCheck("redis", func(context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	handler.HealthCheck(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestListLeagues(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, "GET", "/api/v1/leagues", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"sample"}, body["leagues"])
}

func TestDates(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, "GET", "/api/v1/dates?date=2019-07-11&range=1w", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["dates"], 7)

	rec, body = env.do(t, "GET", "/api/v1/dates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2019-06-05", body["date"], "date defaults to yesterday")

	rec, _ = env.do(t, "GET", "/api/v1/dates?range=3d", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReport(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, "GET", "/api/v1/leagues/sample/report?date=2019-06-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	players := body["players"].([]interface{})
	require.Len(t, players, 2)
	first := players[0].(map[string]interface{})
	assert.Equal(t, "LA Bulls", first["team"])
	assert.InDelta(t, 26.0, first["fantasy_points"], 1e-9)
}

func TestTopAndTeams(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, "GET", "/api/v1/leagues/sample/top?date=2019-06-05&top=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["n"])
	assert.Len(t, body["batters"], 1)

	rec, _ = env.do(t, "GET", "/api/v1/leagues/sample/top?date=2019-06-05&top=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = env.do(t, "GET", "/api/v1/leagues/sample/teams?date=2019-06-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	teams := body["teams"].([]interface{})
	require.Len(t, teams, 2)
	assert.Equal(t, "LA Bulls", teams[0].(map[string]interface{})["team"])
}

func TestOutstandingAndWeekly(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, "GET", "/api/v1/leagues/sample/outstanding?date=2019-06-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["performances"], 1)

	rec, body = env.do(t, "GET", "/api/v1/leagues/sample/weekly?date=2019-06-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["rows"], 3)
	assert.Len(t, body["teams"], 4)
}

func TestHeaders(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, "GET", "/api/v1/leagues/sample/headers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["headers"], len(league.SampleScoringRule().HeaderItems()))
}

func TestReportErrors(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, "GET", "/api/v1/leagues/nope/report?date=2019-06-05", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "League not found", body["error"])

	rec, _ = env.do(t, "GET", "/api/v1/leagues/sample/report?date=June", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.loader.err = sportradar.ErrAPIKeyMissing
	rec, _ = env.do(t, "GET", "/api/v1/leagues/sample/report?date=2019-06-05", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBackfillEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, "POST", "/api/v1/backfill", map[string]interface{}{
		"start_date": "2019-07-07",
		"end_date":   "2019-07-11",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	job := body["job"].(map[string]interface{})
	assert.Equal(t, "date_range", job["job_type"])
	assert.EqualValues(t, 2, job["progress_total"])
	id := job["job_id"].(string)

	require.Eventually(t, func() bool {
		_, body := env.do(t, "GET", "/api/v1/backfill/jobs/"+id, nil)
		return body["job"].(map[string]interface{})["status"] == "completed"
	}, 2*time.Second, 10*time.Millisecond)

	_, body = env.do(t, "GET", "/api/v1/backfill/jobs/"+id, nil)
	events := body["events"].([]interface{})
	require.Len(t, events, 3)
	assert.Equal(t, "queued", events[0].(map[string]interface{})["event_type"])
	assert.Equal(t, "2019-07-11: 0 players from file", events[2].(map[string]interface{})["message"])

	rec, body = env.do(t, "GET", "/api/v1/backfill/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", body["status"])
	assert.Len(t, body["history"], 1)

	rec, _ = env.do(t, "GET", "/api/v1/backfill/jobs/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, "POST", "/api/v1/backfill", map[string]interface{}{"start_date": "2019-07-07"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, "POST", "/api/v1/backfill", map[string]interface{}{"start_date": "7/7/2019", "end_date": "2019-07-08"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")
}
