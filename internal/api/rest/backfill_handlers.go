package rest

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fortuna/mlbh2h/internal/backfill"
	"github.com/fortuna/mlbh2h/internal/schedule"
	"github.com/gorilla/mux"
)

// BackfillHandler exposes the cache warm-up queue.
type BackfillHandler struct {
	service *backfill.Service
}

// NewBackfillHandler wires the REST layer to the backfill service.
func NewBackfillHandler(service *backfill.Service) *BackfillHandler {
	return &BackfillHandler{service: service}
}

// apiBackfillRequest is the POST body. Date is shorthand for a single entry
// of Dates.
type apiBackfillRequest struct {
	Season    bool     `json:"season"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Date      string   `json:"date"`
	Dates     []string `json:"dates"`
	DryRun    bool     `json:"dry_run"`
}

func (a apiBackfillRequest) toRequest() (backfill.Request, error) {
	req := backfill.Request{Season: a.Season, DryRun: a.DryRun}
	req.Dates = append(req.Dates, a.Dates...)
	if a.Date != "" {
		req.Dates = append(req.Dates, a.Date)
	}

	for _, bound := range []struct {
		field string
		value string
		dst   **time.Time
	}{
		{"start_date", a.StartDate, &req.StartDate},
		{"end_date", a.EndDate, &req.EndDate},
	} {
		if bound.value == "" {
			continue
		}
		d, err := schedule.ParseDate(bound.value)
		if err != nil {
			return req, fmt.Errorf("%s: %w", bound.field, err)
		}
		*bound.dst = &d
	}
	return req, nil
}

// HandleBackfillRequest handles POST /api/v1/backfill
func (h *BackfillHandler) HandleBackfillRequest(w http.ResponseWriter, r *http.Request) {
	var body apiBackfillRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := body.toRequest()
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date (expected YYYY-MM-DD)", err)
		return
	}

	job, err := h.service.Enqueue(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to enqueue backfill job", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{"job": jobPayload(job)})
}

// HandleBackfillStatus handles GET /api/v1/backfill/status
func (h *BackfillHandler) HandleBackfillStatus(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetStatus(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch status", err)
		return
	}
	respondJSON(w, http.StatusOK, buildStatusPayload(summary))
}

// HandleBackfillJob handles GET /api/v1/backfill/jobs/{jobID}
func (h *BackfillHandler) HandleBackfillJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobID"]

	job, err := h.service.GetJob(r.Context(), jobID)
	if errors.Is(err, backfill.ErrJobNotFound) {
		respondError(w, http.StatusNotFound, "Job not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch job", err)
		return
	}

	events, err := h.service.Events(r.Context(), jobID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch job events", err)
		return
	}
	if events == nil {
		events = []backfill.JobEvent{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"job":    jobPayload(job),
		"events": events,
	})
}

func buildStatusPayload(summary *backfill.StatusSummary) map[string]interface{} {
	history := make([]map[string]interface{}, 0, len(summary.History))
	for _, job := range summary.History {
		history = append(history, jobPayload(job))
	}

	response := map[string]interface{}{
		"status":  "idle",
		"message": "No active jobs",
		"history": history,
	}
	if active := summary.ActiveJob; active != nil {
		response["status"] = active.Status
		response["active_job"] = jobPayload(active)
		if active.StatusMessage.Valid {
			response["message"] = active.StatusMessage.String
		}
	}
	return response
}

func jobPayload(job *backfill.Job) map[string]interface{} {
	if job == nil {
		return nil
	}

	payload := map[string]interface{}{
		"job_id":           job.JobID,
		"job_type":         job.JobType,
		"status":           job.Status,
		"dry_run":          job.DryRun,
		"progress_current": job.ProgressCurrent,
		"progress_total":   job.ProgressTotal,
		"created_at":       job.CreatedAt.Format(time.RFC3339),
		"updated_at":       job.UpdatedAt.Format(time.RFC3339),
	}
	if len(job.Dates) > 0 {
		payload["dates"] = []string(job.Dates)
	}

	putString(payload, "status_message", job.StatusMessage)
	putString(payload, "last_error", job.LastError)
	putTime(payload, "start_date", job.StartDate, schedule.FormatDate)
	putTime(payload, "end_date", job.EndDate, schedule.FormatDate)
	putTime(payload, "started_at", job.StartedAt, rfc3339)
	putTime(payload, "completed_at", job.CompletedAt, rfc3339)
	return payload
}

func putString(payload map[string]interface{}, key string, v sql.NullString) {
	if v.Valid {
		payload[key] = v.String
	}
}

func putTime(payload map[string]interface{}, key string, v sql.NullTime, format func(time.Time) string) {
	if v.Valid {
		payload[key] = format(v.Time)
	}
}

func rfc3339(t time.Time) string {
	return t.Format(time.RFC3339)
}
