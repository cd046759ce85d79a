package reconciliation

import (
	"testing"

	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/fortuna/mlbh2h/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batter(name, pos string, runs uint) stats.RawPlayer {
	return stats.RawPlayer{
		Name:            name,
		Position:        pos,
		PrimaryPosition: pos,
		BatterStats:     &stats.BatterStats{Runs: runs},
	}
}

func pitcher(name string, ip float64, k uint) stats.RawPlayer {
	return stats.RawPlayer{
		Name:            name,
		Position:        "P",
		PrimaryPosition: "SP",
		PitcherStats:    &stats.PitcherStats{InningsPitched: ip, Strikeouts: k},
	}
}

func TestMatcherIsCaseInsensitiveAndRoleScoped(t *testing.T) {
	roster := league.Roster{Players: []league.RosterPlayer{
		{Name: "john doe", Role: stats.RoleBatter, Team: "Bulls"},
	}}
	m := NewMatcher(roster)

	team, ok := m.Team(stats.RawPlayer{Name: "John Doe", PrimaryPosition: "1B"})
	assert.True(t, ok)
	assert.Equal(t, "Bulls", team)

	_, ok = m.Team(stats.RawPlayer{Name: "John Doe", PrimaryPosition: "SP"})
	assert.False(t, ok)
}

func TestMatcherPitcherEntryDoesNotMatchBatter(t *testing.T) {
	roster := league.Roster{Players: []league.RosterPlayer{
		{Name: "Jordan Smith", Role: stats.RolePitcher, Team: "Bulls"},
	}}
	m := NewMatcher(roster)

	_, ok := m.Team(stats.RawPlayer{Name: "Jordan Smith", PrimaryPosition: "CF"})
	assert.False(t, ok)

	team, ok := m.Team(stats.RawPlayer{Name: "JORDAN SMITH", PrimaryPosition: "RP"})
	assert.True(t, ok)
	assert.Equal(t, "Bulls", team)
}

func TestCreateFantasyPlayersFiltersUnrostered(t *testing.T) {
	rule := league.SampleScoringRule()
	roster := league.SampleRoster()

	raw := []stats.RawPlayer{
		batter("Trey Mancini", "RF", 2),
		batter("Some Rookie", "SS", 3),
	}

	players := CreateFantasyPlayers(raw, rule, roster, false)
	require.Len(t, players, 1)
	assert.Equal(t, "NY Hotdogs", players[0].Team)

	players = CreateFantasyPlayers(raw, rule, roster, true)
	require.Len(t, players, 2)
	assert.Equal(t, FreeAgentTeam, players[0].Team)
	assert.Equal(t, "Some Rookie", players[0].Player.Name)
	assert.InDelta(t, 6.0, players[0].FantasyPoints, 1e-9)
}

func TestCreateFantasyPlayersMergesAcrossDates(t *testing.T) {
	rule := league.SampleScoringRule()
	roster := league.SampleRoster()

	raw := []stats.RawPlayer{
		pitcher("Blake Snell", 1.2, 3),
		batter("Cody Bellinger", "CF", 1),
		pitcher("Blake Snell", 1.2, 2),
	}

	players := CreateFantasyPlayers(raw, rule, roster, false)
	require.Len(t, players, 2)

	snell := players[0]
	assert.Equal(t, "Blake Snell", snell.Player.Name)
	require.NotNil(t, snell.Player.PitcherStats)
	assert.InDelta(t, 3.1, snell.Player.PitcherStats.InningsPitched, 1e-9)
	assert.Equal(t, uint(5), snell.Player.PitcherStats.Strikeouts)
	// points are summed per date: (1 + 2/3 + 6) + (1 + 2/3 + 4)
	assert.InDelta(t, 2*(1+2.0/3)+10, snell.FantasyPoints, 1e-9)

	// the input is not mutated by merging
	assert.InDelta(t, 1.2, raw[0].PitcherStats.InningsPitched, 1e-9)
}

func TestCreateFantasyPlayersKeepsTwoWayPlayersApart(t *testing.T) {
	roster := league.Roster{Players: []league.RosterPlayer{
		{Name: "Shohei Ohtani", Role: stats.RoleBatter, Team: "Angels"},
		{Name: "Shohei Ohtani", Role: stats.RolePitcher, Team: "Angels"},
	}}
	rule := league.SampleScoringRule()

	raw := []stats.RawPlayer{
		batter("Shohei Ohtani", "DH", 1),
		pitcher("Shohei Ohtani", 5.0, 7),
		batter("Shohei Ohtani", "DH", 2),
	}

	players := CreateFantasyPlayers(raw, rule, roster, false)
	require.Len(t, players, 2)
	assert.Equal(t, "SP", players[0].Player.PrimaryPosition)
	assert.Equal(t, "DH", players[1].Player.PrimaryPosition)
	assert.Equal(t, uint(3), players[1].Player.BatterStats.Runs)
}

func TestCreateFantasyPlayersStableRanking(t *testing.T) {
	rule := league.ScoringRule{}
	rule.Batter.Runs = 1
	roster := league.Roster{Players: []league.RosterPlayer{
		{Name: "A", Role: stats.RoleBatter, Team: "T"},
		{Name: "B", Role: stats.RoleBatter, Team: "T"},
		{Name: "C", Role: stats.RoleBatter, Team: "T"},
		{Name: "D", Role: stats.RoleBatter, Team: "T"},
	}}

	raw := []stats.RawPlayer{
		batter("A", "1B", 1),
		batter("B", "1B", 3),
		batter("C", "1B", 1),
		batter("D", "1B", 3),
	}

	players := CreateFantasyPlayers(raw, rule, roster, false)
	var names []string
	for _, p := range players {
		names = append(names, p.Player.Name)
	}
	assert.Equal(t, []string{"B", "D", "A", "C"}, names)
}

func TestCreateFantasyPlayersEmpty(t *testing.T) {
	players := CreateFantasyPlayers(nil, league.SampleScoringRule(), league.SampleRoster(), true)
	assert.Empty(t, players)
}
