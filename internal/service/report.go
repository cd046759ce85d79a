package service

import (
	"context"
	"fmt"

	"github.com/fortuna/mlbh2h/internal/ingest"
	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/fortuna/mlbh2h/internal/reconciliation"
	"github.com/fortuna/mlbh2h/internal/report"
	"github.com/fortuna/mlbh2h/internal/schedule"
	"github.com/sirupsen/logrus"
)

// DefaultTopN is the leader count when a request leaves it unset.
const DefaultTopN = 10

// DateLoader resolves the raw records of a list of dates.
type DateLoader interface {
	LoadDates(ctx context.Context, dates []string) ([]ingest.DateRecords, error)
}

// Request selects a league and a window of dates.
type Request struct {
	League  string
	Date    string
	Range   schedule.Range
	ShowAll bool
	TopN    int
}

// Ranked is the merged, ranked player list of a window.
type Ranked struct {
	League  string                         `json:"league"`
	Dates   []string                       `json:"dates"`
	Headers []string                       `json:"headers"`
	Players []reconciliation.FantasyPlayer `json:"players"`
}

// Top holds the batter and pitcher leaders of a window.
type Top struct {
	League         string                         `json:"league"`
	Dates          []string                       `json:"dates"`
	N              int                            `json:"n"`
	BatterHeaders  []string                       `json:"batter_headers"`
	PitcherHeaders []string                       `json:"pitcher_headers"`
	Batters        []reconciliation.FantasyPlayer `json:"batters"`
	Pitchers       []reconciliation.FantasyPlayer `json:"pitchers"`
}

// ReportService builds every report view for a league.
type ReportService struct {
	leagues    *league.Store
	loader     DateLoader
	calendar   *schedule.Calendar
	thresholds report.Thresholds
	log        *logrus.Entry
}

// NewReportService wires a report service.
func NewReportService(leagues *league.Store, loader DateLoader, calendar *schedule.Calendar, thresholds report.Thresholds, log *logrus.Entry) *ReportService {
	return &ReportService{
		leagues:    leagues,
		loader:     loader,
		calendar:   calendar,
		thresholds: thresholds,
		log:        log,
	}
}

// Calendar returns the season calendar in use.
func (s *ReportService) Calendar() *schedule.Calendar {
	return s.calendar
}

// Thresholds returns the outstanding-performance thresholds in use.
func (s *ReportService) Thresholds() report.Thresholds {
	return s.thresholds
}

// Dates resolves the dates a request covers.
func (s *ReportService) Dates(date string, r schedule.Range) ([]string, error) {
	return s.calendar.DateStrs(date, r)
}

// ScoringRule loads a league's scoring rule.
func (s *ReportService) ScoringRule(name string) (league.ScoringRule, error) {
	return s.leagues.LoadScoringRule(name)
}

// Headers returns the output columns of a league.
func (s *ReportService) Headers(name string) ([]string, error) {
	rule, err := s.leagues.LoadScoringRule(name)
	if err != nil {
		return nil, err
	}
	return rule.HeaderItems(), nil
}

// Ranked merges every date of the window and ranks the result.
func (s *ReportService) Ranked(ctx context.Context, req Request) (*Ranked, error) {
	engine, rule, err := s.engine(req)
	if err != nil {
		return nil, err
	}

	dates, err := s.calendar.DateStrs(req.Date, req.Range)
	if err != nil {
		return nil, err
	}

	days, err := s.loader.LoadDates(ctx, dates)
	if err != nil {
		return nil, fmt.Errorf("league %s: %w", req.League, err)
	}

	players := engine.CreateFantasyPlayers(ingest.Flatten(days))
	s.log.WithFields(logrus.Fields{
		"league":  req.League,
		"dates":   len(dates),
		"players": len(players),
	}).Debug("ranked report built")

	return &Ranked{
		League:  req.League,
		Dates:   dates,
		Headers: rule.HeaderItems(),
		Players: players,
	}, nil
}

// Top returns the first N batters and pitchers of the ranked window.
func (s *ReportService) Top(ctx context.Context, req Request) (*Top, error) {
	ranked, err := s.Ranked(ctx, req)
	if err != nil {
		return nil, err
	}
	rule, err := s.leagues.LoadScoringRule(req.League)
	if err != nil {
		return nil, err
	}

	n := req.TopN
	if n <= 0 {
		n = DefaultTopN
	}
	batters, pitchers := report.TopN(ranked.Players, n)

	return &Top{
		League:         req.League,
		Dates:          ranked.Dates,
		N:              n,
		BatterHeaders:  rule.HeaderItemsForBatter(),
		PitcherHeaders: rule.HeaderItemsForPitcher(),
		Batters:        batters,
		Pitchers:       pitchers,
	}, nil
}

// Teams totals the ranked window per fantasy team.
func (s *ReportService) Teams(ctx context.Context, req Request) ([]report.TeamTotal, error) {
	ranked, err := s.Ranked(ctx, req)
	if err != nil {
		return nil, err
	}
	return report.TeamTotals(ranked.Players), nil
}

// Outstanding scans every game date of the season through req.Date, one
// date at a time. The request range is ignored.
func (s *ReportService) Outstanding(ctx context.Context, req Request) ([]report.Outstanding, error) {
	dates, err := s.calendar.DateStrs(req.Date, schedule.RangeAll)
	if err != nil {
		return nil, err
	}

	perDate, err := s.perDate(ctx, req, dates)
	if err != nil {
		return nil, err
	}
	return report.OutstandingPlayers(perDate, s.thresholds), nil
}

// Weekly totals each team per date of the matchup week containing req.Date.
func (s *ReportService) Weekly(ctx context.Context, req Request) (report.WeeklyGrid, error) {
	dates, err := s.calendar.WeeklyDateStrs(req.Date)
	if err != nil {
		return report.WeeklyGrid{}, err
	}

	roster, err := s.leagues.LoadRoster(req.League)
	if err != nil {
		return report.WeeklyGrid{}, err
	}

	perDate, err := s.perDate(ctx, req, dates)
	if err != nil {
		return report.WeeklyGrid{}, err
	}
	return report.BuildWeeklyGrid(roster.Teams(), perDate), nil
}

// perDate scores each date on its own.
func (s *ReportService) perDate(ctx context.Context, req Request, dates []string) ([]report.DatePlayers, error) {
	engine, _, err := s.engine(req)
	if err != nil {
		return nil, err
	}

	days, err := s.loader.LoadDates(ctx, dates)
	if err != nil {
		return nil, fmt.Errorf("league %s: %w", req.League, err)
	}

	out := make([]report.DatePlayers, 0, len(days))
	for _, d := range days {
		out = append(out, report.DatePlayers{
			Date:    d.Date,
			Players: engine.CreateFantasyPlayers(d.Players),
		})
	}
	return out, nil
}

func (s *ReportService) engine(req Request) (*reconciliation.Engine, league.ScoringRule, error) {
	rule, err := s.leagues.LoadScoringRule(req.League)
	if err != nil {
		return nil, rule, err
	}
	roster, err := s.leagues.LoadRoster(req.League)
	if err != nil {
		return nil, rule, err
	}
	return reconciliation.NewEngine(rule, roster, req.ShowAll), rule, nil
}
