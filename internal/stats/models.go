package stats

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the fantasy archetype a player is scored as.
type Role int

const (
	RoleBatter Role = iota
	RolePitcher
)

func (r Role) String() string {
	if r == RolePitcher {
		return "Pitcher"
	}
	return "Batter"
}

// ParseRole accepts "Batter"/"Pitcher" in any case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "batter":
		return RoleBatter, nil
	case "pitcher":
		return RolePitcher, nil
	default:
		return RoleBatter, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleForPosition derives the role from a primary position code.
// Only starting and relief pitchers are pitchers; two-way players listed
// with a fielding position score as batters.
func RoleForPosition(primaryPosition string) Role {
	switch strings.ToUpper(strings.TrimSpace(primaryPosition)) {
	case "SP", "RP":
		return RolePitcher
	default:
		return RoleBatter
	}
}

// BatterStats holds a batter's counting statistics for one or more games.
type BatterStats struct {
	AtBats               uint `json:"at_bats"`
	Runs                 uint `json:"runs"`
	Hits                 uint `json:"hits"`
	Singles              uint `json:"singles"`
	Doubles              uint `json:"doubles"`
	Triples              uint `json:"triples"`
	HomeRuns             uint `json:"home_runs"`
	RunsBattedIn         uint `json:"runs_batted_in"`
	SacrificeHits        uint `json:"sacrifice_hits"`
	StolenBases          uint `json:"stolen_bases"`
	CaughtStealing       uint `json:"caught_stealing"`
	Walks                uint `json:"walks"`
	IntentionalWalks     uint `json:"intentional_walks"`
	HitByPitch           uint `json:"hit_by_pitch"`
	Strikeouts           uint `json:"strikeouts"`
	GroundIntoDoublePlay uint `json:"ground_into_double_play"`
	TotalBases           uint `json:"total_bases"`
}

// PitcherStats holds a pitcher's counting statistics. InningsPitched uses
// thirds notation: 6.2 means six innings and two outs.
type PitcherStats struct {
	InningsPitched                 float64 `json:"innings_pitched"`
	Wins                           uint    `json:"wins"`
	Losses                         uint    `json:"losses"`
	CompleteGames                  uint    `json:"complete_games"`
	Shutouts                       uint    `json:"shutouts"`
	Saves                          uint    `json:"saves"`
	Outs                           uint    `json:"outs"`
	Hits                           uint    `json:"hits"`
	EarnedRuns                     uint    `json:"earned_runs"`
	HomeRuns                       uint    `json:"home_runs"`
	Walks                          uint    `json:"walks"`
	IntentionalWalks               uint    `json:"intentional_walks"`
	HitBatters                     uint    `json:"hit_batters"`
	Strikeouts                     uint    `json:"strikeouts"`
	StolenBasesAllowed             uint    `json:"stolen_bases_allowed"`
	BattersGroundedIntoDoublePlays uint    `json:"batters_grounded_into_double_plays"`
	TotalBasesAllowed              uint    `json:"total_bases_allowed"`
}

// RawPlayer is one player's stat line as delivered by the provider or read
// from the per-date cache.
type RawPlayer struct {
	Name            string        `json:"name"`
	Position        string        `json:"position"`
	PrimaryPosition string        `json:"primary_position"`
	BatterStats     *BatterStats  `json:"batter_stats"`
	PitcherStats    *PitcherStats `json:"pitcher_stats"`
}

// Role derives the player's role from the primary position.
func (p RawPlayer) Role() Role {
	return RoleForPosition(p.PrimaryPosition)
}

// Key identifies a player across dates. Two-way players keep one key per
// primary position.
type Key struct {
	Name            string
	PrimaryPosition string
}

func (p RawPlayer) Key() Key {
	return Key{Name: p.Name, PrimaryPosition: p.PrimaryPosition}
}

// Clone returns a deep copy.
func (p RawPlayer) Clone() RawPlayer {
	out := p
	if p.BatterStats != nil {
		bs := *p.BatterStats
		out.BatterStats = &bs
	}
	if p.PitcherStats != nil {
		ps := *p.PitcherStats
		out.PitcherStats = &ps
	}
	return out
}
