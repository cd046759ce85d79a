package league

import (
	"fmt"
	"strings"

	"github.com/fortuna/mlbh2h/internal/stats"
)

// RosterPlayer assigns one player, in one role, to a fantasy team.
type RosterPlayer struct {
	Name string     `json:"name"`
	Role stats.Role `json:"role"`
	Team string     `json:"team"`
}

// Roster is the ordered set of rostered players in a league.
type Roster struct {
	Players []RosterPlayer `json:"players"`
}

// Teams returns team names in order of first appearance.
func (r Roster) Teams() []string {
	seen := make(map[string]bool)
	var teams []string
	for _, p := range r.Players {
		if seen[p.Team] {
			continue
		}
		seen[p.Team] = true
		teams = append(teams, p.Team)
	}
	return teams
}

// Validate checks names and teams are set and that a name appears at most
// once per role.
func (r Roster) Validate() error {
	type key struct {
		name string
		role stats.Role
	}
	seen := make(map[key]bool, len(r.Players))

	for i, p := range r.Players {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("roster entry %d: empty player name", i)
		}
		if strings.TrimSpace(p.Team) == "" {
			return fmt.Errorf("roster entry %d (%s): empty team name", i, p.Name)
		}
		k := key{strings.ToLower(p.Name), p.Role}
		if seen[k] {
			return fmt.Errorf("roster entry %d: %s listed twice as %s", i, p.Name, p.Role)
		}
		seen[k] = true
	}
	return nil
}
