package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/mlbh2h/internal/ingest"
	"github.com/fortuna/mlbh2h/internal/schedule"
)

// DateLoader loads one date through the cache chain.
type DateLoader interface {
	LoadDate(ctx context.Context, date string) (ingest.DateRecords, error)
}

// Runner executes backfill specs by warming the stats caches date by date.
type Runner struct {
	loader   DateLoader
	calendar *schedule.Calendar
}

// NewRunner constructs a runner.
func NewRunner(loader DateLoader, calendar *schedule.Calendar) *Runner {
	return &Runner{
		loader:   loader,
		calendar: calendar,
	}
}

// Calendar returns the season calendar the runner skips no-game dates with.
func (r *Runner) Calendar() *schedule.Calendar {
	return r.calendar
}

// Dates resolves the game dates a spec covers, ascending.
func (r *Runner) Dates(spec JobSpec) ([]time.Time, error) {
	switch spec.Type {
	case JobTypeDates:
		dates := make([]time.Time, 0, len(spec.Dates))
		for _, s := range spec.Dates {
			d, err := schedule.ParseDate(s)
			if err != nil {
				return nil, err
			}
			dates = append(dates, d)
		}
		return dates, nil
	case JobTypeSeason, JobTypeDateRange:
		var dates []time.Time
		for _, d := range schedule.EnumerateDates(spec.Start, spec.End) {
			if !r.calendar.IsNoGameDate(d) {
				dates = append(dates, d)
			}
		}
		return dates, nil
	default:
		return nil, fmt.Errorf("unsupported job type %s", spec.Type)
	}
}

// Run executes the job spec, reporting progress via the Reporter if provided.
func (r *Runner) Run(ctx context.Context, spec JobSpec, reporter Reporter) error {
	if reporter == nil {
		reporter = nopReporter{}
	}

	reporter.OnJobStart(spec)

	dates, err := r.Dates(spec)
	if err != nil {
		reporter.OnJobError(err)
		return err
	}

	total := len(dates)
	if total == 0 {
		reporter.OnProgress("No dates to process", 0, 0)
		reporter.OnJobComplete()
		return nil
	}

	if spec.DryRun {
		reporter.OnProgress(fmt.Sprintf("Dry-run mode: %d dates would be loaded, no data will be written", total), 0, total)
		reporter.OnJobComplete()
		return nil
	}

	for idx, date := range dates {
		if err := ctx.Err(); err != nil {
			return err
		}

		reporter.OnDateStart(date, idx, total)

		day := schedule.FormatDate(date)
		rec, err := r.loader.LoadDate(ctx, day)
		if err != nil {
			reporter.OnJobError(err)
			return fmt.Errorf("load %s: %w", day, err)
		}

		reporter.OnDateLoaded(ingest.Event{
			Date:    day,
			Index:   idx,
			Total:   total,
			Source:  rec.Source,
			Players: len(rec.Players),
		})
		reporter.OnProgress(fmt.Sprintf("Processed %s", date.Format("Jan 2, 2006")), idx+1, total)
	}

	reporter.OnJobComplete()
	return nil
}

type nopReporter struct{}

func (nopReporter) OnJobStart(JobSpec) {}
func (nopReporter) OnDateStart(time.Time, int, int) {}
func (nopReporter) OnDateLoaded(ingest.Event) {}
func (nopReporter) OnProgress(string, int, int) {}
func (nopReporter) OnJobComplete() {}
func (nopReporter) OnJobError(error) {}
