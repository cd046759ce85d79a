package league

import "github.com/fortuna/mlbh2h/internal/stats"

// SampleLeague is the built-in league name that needs no files on disk.
const SampleLeague = "sample"

// SampleScoringRule returns the built-in head-to-head points rule.
func SampleScoringRule() ScoringRule {
	return ScoringRule{
		Batter: BatterWeights{
			Runs:         2,
			Hits:         0.5,
			HomeRuns:     4,
			RunsBattedIn: 2,
			StolenBases:  2,
		},
		Pitcher: PitcherWeights{
			InningsPitched: 1,
			Wins:           5,
			Saves:          5,
			EarnedRuns:     -0.5,
			Strikeouts:     2,
		},
	}
}

// SampleRoster returns the built-in four team roster.
func SampleRoster() Roster {
	entries := []struct {
		team     string
		batters  []string
		pitchers []string
	}{
		{"LA Bulls", []string{"Cody Bellinger", "Domingo Santana"}, []string{"Blake Snell", "Max Scherzer"}},
		{"Chicago Pizzas", []string{"Christian Yelich", "Tim Beckham"}, []string{"Jacob deGrom", "Carlos Rodón"}},
		{"NY Hotdogs", []string{"Trey Mancini", "Anthony Rendon"}, []string{"José Berríos", "Mike Clevinger"}},
		{"Seattle Coffees", []string{"Jonathan Villar", "Rhys Hoskins"}, []string{"Kirby Yates", "Josh Hader"}},
	}

	var roster Roster
	for _, e := range entries {
		for _, name := range e.batters {
			roster.Players = append(roster.Players, RosterPlayer{Name: name, Role: stats.RoleBatter, Team: e.team})
		}
		for _, name := range e.pitchers {
			roster.Players = append(roster.Players, RosterPlayer{Name: name, Role: stats.RolePitcher, Team: e.team})
		}
	}
	return roster
}
