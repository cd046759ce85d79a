package report

import (
	"sort"

	"github.com/fortuna/mlbh2h/internal/reconciliation"
	"github.com/fortuna/mlbh2h/internal/stats"
)

// TeamTotal is a fantasy team's summed points.
type TeamTotal struct {
	Team   string  `json:"team"`
	Points float64 `json:"fantasy_points"`
}

// DatePlayers are the scored players of a single date, unmerged with any
// other date.
type DatePlayers struct {
	Date    string                         `json:"date"`
	Players []reconciliation.FantasyPlayer `json:"players"`
}

// Outstanding is one single-date performance at or above the threshold.
type Outstanding struct {
	Date   string                       `json:"date"`
	Player reconciliation.FantasyPlayer `json:"player"`
}

// Thresholds are the per-role point levels for the outstanding scan.
type Thresholds struct {
	Batter  float64 `json:"batter"`
	Pitcher float64 `json:"pitcher"`
}

// DefaultThresholds flag 15 point batters and 25 point pitchers.
var DefaultThresholds = Thresholds{Batter: 15, Pitcher: 25}

func (t Thresholds) forRole(r stats.Role) float64 {
	if r == stats.RolePitcher {
		return t.Pitcher
	}
	return t.Batter
}

// TopN splits a ranked list into its first n batters and first n pitchers.
// It stops scanning once both are full.
func TopN(ranked []reconciliation.FantasyPlayer, n int) (batters, pitchers []reconciliation.FantasyPlayer) {
	if n <= 0 {
		return nil, nil
	}
	for _, fp := range ranked {
		if len(batters) >= n && len(pitchers) >= n {
			break
		}
		if fp.Role() == stats.RolePitcher {
			if len(pitchers) < n {
				pitchers = append(pitchers, fp)
			}
			continue
		}
		if len(batters) < n {
			batters = append(batters, fp)
		}
	}
	return batters, pitchers
}

// TeamTotals sums points per team and sorts descending. Teams with equal
// totals keep first-appearance order.
func TeamTotals(players []reconciliation.FantasyPlayer) []TeamTotal {
	index := make(map[string]int)
	var totals []TeamTotal

	for _, fp := range players {
		i, ok := index[fp.Team]
		if !ok {
			i = len(totals)
			index[fp.Team] = i
			totals = append(totals, TeamTotal{Team: fp.Team})
		}
		totals[i].Points += fp.FantasyPoints
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Points > totals[j].Points
	})
	return totals
}

// OutstandingPlayers scans each date on its own and reports every player
// whose points meet the threshold for their role.
func OutstandingPlayers(days []DatePlayers, thresholds Thresholds) []Outstanding {
	var hits []Outstanding
	for _, day := range days {
		for _, fp := range day.Players {
			if fp.FantasyPoints >= thresholds.forRole(fp.Role()) {
				hits = append(hits, Outstanding{Date: day.Date, Player: fp})
			}
		}
	}
	return hits
}

// WeeklyRow holds one date's per-team totals, aligned with WeeklyGrid.Teams.
type WeeklyRow struct {
	Date   string    `json:"date"`
	Points []float64 `json:"points"`
}

// WeeklyGrid is a date by team table of fantasy points.
type WeeklyGrid struct {
	Teams  []string    `json:"teams"`
	Rows   []WeeklyRow `json:"rows"`
	Totals []float64   `json:"totals"`
}

// BuildWeeklyGrid totals points per team for every date. Every team in
// teams appears even with no matched players; teams found only in the data
// (free agents) are appended in first-seen order.
func BuildWeeklyGrid(teams []string, days []DatePlayers) WeeklyGrid {
	grid := WeeklyGrid{Teams: append([]string{}, teams...)}
	column := make(map[string]int, len(teams))
	for i, team := range grid.Teams {
		column[team] = i
	}

	for _, day := range days {
		for _, fp := range day.Players {
			if _, ok := column[fp.Team]; !ok {
				column[fp.Team] = len(grid.Teams)
				grid.Teams = append(grid.Teams, fp.Team)
			}
		}
	}

	grid.Totals = make([]float64, len(grid.Teams))
	for _, day := range days {
		row := WeeklyRow{Date: day.Date, Points: make([]float64, len(grid.Teams))}
		for _, fp := range day.Players {
			i := column[fp.Team]
			row.Points[i] += fp.FantasyPoints
			grid.Totals[i] += fp.FantasyPoints
		}
		grid.Rows = append(grid.Rows, row)
	}

	return grid
}
