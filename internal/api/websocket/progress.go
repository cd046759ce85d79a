package websocket

import (
	"time"

	"github.com/fortuna/mlbh2h/internal/backfill"
	"github.com/fortuna/mlbh2h/internal/ingest"
	"github.com/fortuna/mlbh2h/internal/schedule"
)

// ProgressReporter turns backfill and loader callbacks into hub broadcasts.
type ProgressReporter struct {
	hub *Hub
}

// NewProgressReporter creates a reporter broadcasting on hub.
func NewProgressReporter(hub *Hub) *ProgressReporter {
	return &ProgressReporter{hub: hub}
}

var _ backfill.Reporter = (*ProgressReporter)(nil)

func (p *ProgressReporter) OnJobStart(spec backfill.JobSpec) {
	payload := JobStartPayload{
		Type:   string(spec.Type),
		Dates:  spec.Dates,
		DryRun: spec.DryRun,
	}
	if !spec.Start.IsZero() {
		payload.Start = schedule.FormatDate(spec.Start)
	}
	if !spec.End.IsZero() {
		payload.End = schedule.FormatDate(spec.End)
	}
	p.send(MessageTypeJobStart, payload)
}

func (p *ProgressReporter) OnDateStart(date time.Time, index int, total int) {
	p.send(MessageTypeDateStart, DateStartPayload{Date: schedule.FormatDate(date), Index: index, Total: total})
}

func (p *ProgressReporter) OnDateLoaded(event ingest.Event) {
	p.send(MessageTypeDateLoaded, event)
}

func (p *ProgressReporter) OnProgress(message string, current int, total int) {
	p.send(MessageTypeProgress, ProgressPayload{Message: message, Current: current, Total: total})
}

func (p *ProgressReporter) OnJobComplete() {
	p.send(MessageTypeJobComplete, nil)
}

func (p *ProgressReporter) OnJobError(err error) {
	p.send(MessageTypeJobError, ErrorMessage{Code: "job_failed", Message: err.Error()})
}

// LoaderProgress is an ingest.WithProgress callback.
func (p *ProgressReporter) LoaderProgress(event ingest.Event) {
	p.OnDateLoaded(event)
}

func (p *ProgressReporter) send(t MessageType, payload interface{}) {
	p.hub.Broadcast(ServerMessage{Type: t, Payload: payload, Timestamp: time.Now()})
}
