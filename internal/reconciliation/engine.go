package reconciliation

import (
	"sort"

	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/fortuna/mlbh2h/internal/stats"
)

// FantasyPlayer is a player's merged stat line with its fantasy points.
type FantasyPlayer struct {
	Team          string          `json:"team"`
	Player        stats.RawPlayer `json:"player"`
	FantasyPoints float64         `json:"fantasy_points"`
}

// Role is the role the player is scored as.
func (fp FantasyPlayer) Role() stats.Role {
	return fp.Player.Role()
}

// Engine scores stat lines under a league's rule and roster.
type Engine struct {
	rule    league.ScoringRule
	matcher *Matcher
	showAll bool
}

// NewEngine creates an engine. With showAll set, unrostered players are
// kept under FreeAgentTeam instead of being dropped.
func NewEngine(rule league.ScoringRule, roster league.Roster, showAll bool) *Engine {
	return &Engine{
		rule:    rule,
		matcher: NewMatcher(roster),
		showAll: showAll,
	}
}

// CreateFantasyPlayers matches, scores and merges raw stat lines, then
// ranks them by points descending. Equal scores keep encounter order.
func (e *Engine) CreateFantasyPlayers(raw []stats.RawPlayer) []FantasyPlayer {
	acc := newAccumulator(len(raw))

	for _, p := range raw {
		team, ok := e.matcher.Team(p)
		if !ok {
			if !e.showAll {
				continue
			}
			team = FreeAgentTeam
		}

		acc.add(FantasyPlayer{
			Team:          team,
			Player:        p,
			FantasyPoints: e.rule.Score(p),
		})
	}

	players := acc.drain()
	SortByPoints(players)
	return players
}

// CreateFantasyPlayers is a convenience wrapper around Engine.
func CreateFantasyPlayers(raw []stats.RawPlayer, rule league.ScoringRule, roster league.Roster, showAll bool) []FantasyPlayer {
	return NewEngine(rule, roster, showAll).CreateFantasyPlayers(raw)
}

// SortByPoints sorts descending by fantasy points, keeping the relative
// order of ties.
func SortByPoints(players []FantasyPlayer) {
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].FantasyPoints > players[j].FantasyPoints
	})
}

// accumulator folds records sharing a (name, primary position) key.
type accumulator struct {
	index map[stats.Key]int
	items []FantasyPlayer
}

func newAccumulator(capacity int) *accumulator {
	return &accumulator{
		index: make(map[stats.Key]int, capacity),
		items: make([]FantasyPlayer, 0, capacity),
	}
}

func (a *accumulator) add(fp FantasyPlayer) {
	key := fp.Player.Key()
	if i, ok := a.index[key]; ok {
		cur := a.items[i]
		cur.Player = cur.Player.Merge(fp.Player)
		cur.FantasyPoints += fp.FantasyPoints
		a.items[i] = cur
		return
	}
	fp.Player = fp.Player.Clone()
	a.index[key] = len(a.items)
	a.items = append(a.items, fp)
}

// drain returns accumulated players in first-seen order.
func (a *accumulator) drain() []FantasyPlayer {
	out := a.items
	a.items = nil
	a.index = nil
	return out
}
