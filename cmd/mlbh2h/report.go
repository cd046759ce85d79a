package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/fortuna/mlbh2h/internal/ingest"
	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/fortuna/mlbh2h/internal/logger"
	"github.com/fortuna/mlbh2h/internal/report"
	"github.com/fortuna/mlbh2h/internal/schedule"
	"github.com/fortuna/mlbh2h/internal/service"
	"github.com/sirupsen/logrus"
)

const defaultReportDate = "2019-04-01"

var reportViews = []string{"ranked", "top", "teams", "outstanding", "weekly"}

func runReport(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	var (
		common  commonFlags
		date    = fs.String("d", defaultReportDate, "stats date (YYYY-MM-DD)")
		name    = fs.String("l", league.SampleLeague, "league name")
		rng     = fs.String("r", string(schedule.RangeDay), "range: 1d, 1w, 2w, 1m or all")
		format  = fs.String("f", string(report.FormatPretty), "output format: pretty, csv or json")
		showAll = fs.Bool("all", false, "include players not on any roster")
		view    = fs.String("view", "ranked", "view: "+strings.Join(reportViews, ", "))
		topN    = fs.Int("top", service.DefaultTopN, "leaders per role for the top view")
	)
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := schedule.ParseRange(*rng)
	if err != nil {
		return err
	}
	f, err := report.ParseFormat(*format)
	if err != nil {
		return err
	}
	if _, err := schedule.ParseDate(*date); err != nil {
		return err
	}

	a, err := newApp(common)
	if err != nil {
		return err
	}
	defer a.close()
	a.connect(ctx)

	log := logger.WithLeague(*name).WithField("component", appName)
	loader, err := a.loader(ingest.WithProgress(func(e ingest.Event) {
		log.WithFields(logrus.Fields{
			"date":    e.Date,
			"source":  e.Source,
			"players": e.Players,
		}).Debugf("loaded %d/%d", e.Index+1, e.Total)
	}))
	if err != nil {
		return err
	}

	svc := service.NewReportService(a.leagues, loader, a.calendar, a.cfg.Thresholds(), log)
	req := service.Request{League: *name, Date: *date, Range: r, ShowAll: *showAll, TopN: *topN}
	return renderView(ctx, svc, *view, req, report.NewRenderer(stdout, f))
}

func renderView(ctx context.Context, svc *service.ReportService, view string, req service.Request, out *report.Renderer) error {
	switch view {
	case "ranked":
		ranked, err := svc.Ranked(ctx, req)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("# %s %s (%s)", req.League, req.Date, req.Range)
		return out.Players(title, ranked.Headers, ranked.Players)
	case "top":
		top, err := svc.Top(ctx, req)
		if err != nil {
			return err
		}
		rule, err := svc.ScoringRule(req.League)
		if err != nil {
			return err
		}
		return out.TopN(rule, top.N, top.Batters, top.Pitchers)
	case "teams":
		totals, err := svc.Teams(ctx, req)
		if err != nil {
			return err
		}
		return out.TeamTotals(totals)
	case "outstanding":
		hits, err := svc.Outstanding(ctx, req)
		if err != nil {
			return err
		}
		rule, err := svc.ScoringRule(req.League)
		if err != nil {
			return err
		}
		return out.Outstanding(rule, hits)
	case "weekly":
		grid, err := svc.Weekly(ctx, req)
		if err != nil {
			return err
		}
		return out.Weekly(grid)
	default:
		return fmt.Errorf("unknown view %q (use %s)", view, strings.Join(reportViews, ", "))
	}
}

func runDates(_ context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("dates", flag.ContinueOnError)
	var (
		common commonFlags
		date   = fs.String("d", defaultReportDate, "anchor date (YYYY-MM-DD)")
		rng    = fs.String("r", string(schedule.RangeDay), "range: 1d, 1w, 2w, 1m or all")
		weekly = fs.Bool("weekly", false, "print the matchup week containing the date instead")
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

	var dates []string
	if *weekly {
		dates, err = a.calendar.WeeklyDateStrs(*date)
	} else {
		var r schedule.Range
		if r, err = schedule.ParseRange(*rng); err == nil {
			dates, err = a.calendar.DateStrs(*date, r)
		}
	}
	if err != nil {
		return err
	}

	for _, d := range dates {
		if _, err := fmt.Fprintln(stdout, d); err != nil {
			return err
		}
	}
	return nil
}
