package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fortuna/mlbh2h/internal/backfill"
	"github.com/fortuna/mlbh2h/internal/ingest"
	"github.com/fortuna/mlbh2h/internal/schedule"
)

func runBackfill(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("backfill", flag.ContinueOnError)
	var (
		common    commonFlags
		startDate = fs.String("start", "", "start date (YYYY-MM-DD)")
		endDate   = fs.String("end", "", "end date (YYYY-MM-DD), default yesterday")
		dates     = fs.String("dates", "", "comma separated dates, instead of a range")
		season    = fs.Bool("season", false, "from the season start through -end")
		dryRun    = fs.Bool("dry-run", false, "list the work without loading anything")
	)
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(common)
	if err != nil {
		return err
	}
	defer a.close()

	spec, err := buildSpec(a.calendar, *season, *startDate, *endDate, *dates, time.Now())
	if err != nil {
		return fmt.Errorf("build spec: %w", err)
	}
	spec.DryRun = *dryRun

	if !spec.DryRun {
		a.connect(ctx)
	}
	loader, err := a.loader()
	if err != nil {
		return err
	}

	runner := backfill.NewRunner(loader, a.calendar)
	if err := runner.Run(ctx, spec, &consoleReporter{out: stdout, dryRun: *dryRun}); err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	return nil
}

func buildSpec(calendar *schedule.Calendar, season bool, startStr, endStr, datesStr string, now time.Time) (backfill.JobSpec, error) {
	var spec backfill.JobSpec

	end := now.AddDate(0, 0, -1)
	if endStr != "" {
		d, err := schedule.ParseDate(endStr)
		if err != nil {
			return spec, fmt.Errorf("invalid end date: %w", err)
		}
		end = d
	}
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	switch {
	case datesStr != "":
		spec.Type = backfill.JobTypeDates
		for _, d := range strings.Split(datesStr, ",") {
			d = strings.TrimSpace(d)
			if _, err := schedule.ParseDate(d); err != nil {
				return spec, err
			}
			spec.Dates = append(spec.Dates, d)
		}
	case season:
		spec.Type = backfill.JobTypeSeason
		spec.Start = calendar.SeasonStart()
		spec.End = end
	case startStr != "":
		start, err := schedule.ParseDate(startStr)
		if err != nil {
			return spec, fmt.Errorf("invalid start date: %w", err)
		}
		if end.Before(start) {
			return spec, fmt.Errorf("end date %s is before start date %s", schedule.FormatDate(end), startStr)
		}
		spec.Type = backfill.JobTypeDateRange
		spec.Start = start
		spec.End = end
	default:
		return spec, errors.New("specify -season, -start/-end or -dates")
	}

	return spec, nil
}

type consoleReporter struct {
	out    io.Writer
	dryRun bool
}

func (c *consoleReporter) OnJobStart(spec backfill.JobSpec) {
	fmt.Fprintf(c.out, "Starting %s job (dry_run=%v)\n", spec.Type, c.dryRun)
}

func (c *consoleReporter) OnDateStart(date time.Time, index int, total int) {
	fmt.Fprintf(c.out, "[%d/%d] %s", index+1, total, schedule.FormatDate(date))
}

func (c *consoleReporter) OnDateLoaded(e ingest.Event) {
	fmt.Fprintf(c.out, " %s, %d players\n", e.Source, e.Players)
}

func (c *consoleReporter) OnProgress(message string, current int, total int) {
	if current == 0 || c.dryRun {
		fmt.Fprintf(c.out, "%s\n", message)
	}
}

func (c *consoleReporter) OnJobComplete() {
	fmt.Fprintln(c.out, "Backfill complete")
}

func (c *consoleReporter) OnJobError(err error) {
	fmt.Fprintf(c.out, "\nJob error: %v\n", err)
}
