package reconciliation

import (
	"strings"

	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/fortuna/mlbh2h/internal/stats"
)

// FreeAgentTeam is the team assigned to players missing from the roster.
const FreeAgentTeam = "<FA>"

type rosterKey struct {
	name string
	role stats.Role
}

// Matcher resolves box-score players to roster entries. Names compare
// case-insensitively and the role must agree, so a batter never matches a
// pitcher entry of the same name.
type Matcher struct {
	teams map[rosterKey]string
}

// NewMatcher indexes a roster. When a name and role repeat, the first
// entry wins.
func NewMatcher(roster league.Roster) *Matcher {
	teams := make(map[rosterKey]string, len(roster.Players))
	for _, p := range roster.Players {
		key := rosterKey{normalizeName(p.Name), p.Role}
		if _, exists := teams[key]; !exists {
			teams[key] = p.Team
		}
	}
	return &Matcher{teams: teams}
}

// Team returns the fantasy team for a stat line.
func (m *Matcher) Team(p stats.RawPlayer) (string, bool) {
	team, ok := m.teams[rosterKey{normalizeName(p.Name), p.Role()}]
	return team, ok
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
