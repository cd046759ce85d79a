package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fortuna/mlbh2h/internal/ingest/sportradar"
	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/fortuna/mlbh2h/internal/schedule"
	"github.com/fortuna/mlbh2h/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// HealthCheckFunc probes one backing store.
type HealthCheckFunc func(ctx context.Context) error

// Handler contains dependencies for HTTP handlers
type Handler struct {
	reports *service.ReportService
	leagues *league.Store
	checks  map[string]HealthCheckFunc
	now     func() time.Time
	log     *logrus.Entry
}

// NewHandler creates a new handler
func NewHandler(reports *service.ReportService, leagues *league.Store, log *logrus.Entry) *Handler {
	return &Handler{
		reports: reports,
		leagues: leagues,
		checks:  make(map[string]HealthCheckFunc),
		now:     time.Now,
		log:     log,
	}
}

// AddHealthCheck registers a dependency probed by /health.
func (h *Handler) AddHealthCheck(name string, fn HealthCheckFunc) {
	h.checks[name] = fn
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}
	respondJSON(w, status, map[string]interface{}{
		"status":       state,
		"service":      "mlbh2h",
		"dependencies": deps,
	})
}

// ListLeagues returns the built-in sample league and every saved league
func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	names, err := h.leagues.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list leagues", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"leagues": append([]string{league.SampleLeague}, names...),
	})
}

// GetDates returns the dates a date and range resolve to
func (h *Handler) GetDates(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid query", err)
		return
	}

	dates, err := h.reports.Dates(req.Date, req.Range)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":  req.Date,
		"range": req.Range,
		"dates": dates,
	})
}

// GetHeaders returns a league's output columns
func (h *Handler) GetHeaders(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["league"]
	headers, err := h.reports.Headers(name)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"league": name, "headers": headers})
}

// GetReport returns the ranked player list of a window
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	ranked, err := h.reports.Ranked(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ranked)
}

// GetTop returns the batter and pitcher leaders of a window
func (h *Handler) GetTop(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	top, err := h.reports.Top(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, top)
}

// GetTeams returns fantasy team totals of a window
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	totals, err := h.reports.Teams(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"league": req.League, "teams": totals})
}

// GetOutstanding returns every single-date performance over the thresholds
func (h *Handler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	hits, err := h.reports.Outstanding(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"league":       req.League,
		"thresholds":   h.reports.Thresholds(),
		"performances": hits,
	})
}

// GetWeekly returns per-date team totals of the matchup week
func (h *Handler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}
	grid, err := h.reports.Weekly(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, grid)
}

func (h *Handler) request(w http.ResponseWriter, r *http.Request) (service.Request, bool) {
	req, err := h.parseRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid query", err)
		return req, false
	}
	return req, true
}

// parseRequest reads date (default yesterday), range (default 1d), all and top.
func (h *Handler) parseRequest(r *http.Request) (service.Request, error) {
	q := r.URL.Query()
	req := service.Request{
		League: mux.Vars(r)["league"],
		Date:   q.Get("date"),
		Range:  schedule.RangeDay,
	}

	if req.Date == "" {
		req.Date = schedule.FormatDate(h.now().AddDate(0, 0, -1))
	} else if _, err := schedule.ParseDate(req.Date); err != nil {
		return req, err
	}

	if v := q.Get("range"); v != "" {
		rng, err := schedule.ParseRange(v)
		if err != nil {
			return req, err
		}
		req.Range = rng
	}

	if v := q.Get("all"); v != "" {
		all, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("invalid all=%q: %w", v, err)
		}
		req.ShowAll = all
	}

	if v := q.Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return req, fmt.Errorf("invalid top=%q: must be a positive integer", v)
		}
		req.TopN = n
	}

	return req, nil
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, league.ErrLeagueNotFound):
		respondError(w, http.StatusNotFound, "League not found", err)
	case errors.Is(err, league.ErrInvalidLeagueName):
		respondError(w, http.StatusBadRequest, "Invalid league name", err)
	case errors.Is(err, sportradar.ErrAPIKeyMissing):
		respondError(w, http.StatusServiceUnavailable, "Stats not cached and no provider configured", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "Request cancelled", err)
	default:
		h.log.WithError(err).Error("report failed")
		respondError(w, http.StatusInternalServerError, "Failed to build report", err)
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
