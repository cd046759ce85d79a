package league

import (
	"fmt"
	"math"
	"strings"

	"github.com/fortuna/mlbh2h/internal/stats"
)

// Common columns lead every header list.
var CommonHeaders = []string{"Player", "Team", "FanPts", "Pos"}

const InningsPitchedCode = "P.IP"

// BatterWeights are points per unit of each batting statistic.
type BatterWeights struct {
	AtBats               float64 `json:"at_bats"`
	Runs                 float64 `json:"runs"`
	Hits                 float64 `json:"hits"`
	Singles              float64 `json:"singles"`
	Doubles              float64 `json:"doubles"`
	Triples              float64 `json:"triples"`
	HomeRuns             float64 `json:"home_runs"`
	RunsBattedIn         float64 `json:"runs_batted_in"`
	SacrificeHits        float64 `json:"sacrifice_hits"`
	StolenBases          float64 `json:"stolen_bases"`
	CaughtStealing       float64 `json:"caught_stealing"`
	Walks                float64 `json:"walks"`
	IntentionalWalks     float64 `json:"intentional_walks"`
	HitByPitch           float64 `json:"hit_by_pitch"`
	Strikeouts           float64 `json:"strikeouts"`
	GroundIntoDoublePlay float64 `json:"ground_into_double_play"`
	TotalBases           float64 `json:"total_bases"`
}

// PitcherWeights are points per unit of each pitching statistic. The
// innings weight is applied per full inning.
type PitcherWeights struct {
	InningsPitched                 float64 `json:"innings_pitched"`
	Wins                           float64 `json:"wins"`
	Losses                         float64 `json:"losses"`
	CompleteGames                  float64 `json:"complete_games"`
	Shutouts                       float64 `json:"shutouts"`
	Saves                          float64 `json:"saves"`
	Outs                           float64 `json:"outs"`
	Hits                           float64 `json:"hits"`
	EarnedRuns                     float64 `json:"earned_runs"`
	HomeRuns                       float64 `json:"home_runs"`
	Walks                          float64 `json:"walks"`
	IntentionalWalks               float64 `json:"intentional_walks"`
	HitBatters                     float64 `json:"hit_batters"`
	Strikeouts                     float64 `json:"strikeouts"`
	StolenBasesAllowed             float64 `json:"stolen_bases_allowed"`
	BattersGroundedIntoDoublePlays float64 `json:"batters_grounded_into_double_plays"`
	TotalBasesAllowed              float64 `json:"total_bases_allowed"`
}

// ScoringRule is a league's complete weight table.
type ScoringRule struct {
	Batter  BatterWeights  `json:"batter"`
	Pitcher PitcherWeights `json:"pitcher"`
}

type batterField struct {
	code   string
	name   string
	weight func(*BatterWeights) *float64
	value  func(*stats.BatterStats) uint
}

type pitcherField struct {
	code   string
	name   string
	weight func(*PitcherWeights) *float64
	value  func(*stats.PitcherStats) uint
}

// batterFields is the canonical batting column order.
var batterFields = []batterField{
	{"B.AB", "at_bats", func(w *BatterWeights) *float64 { return &w.AtBats }, func(s *stats.BatterStats) uint { return s.AtBats }},
	{"B.R", "runs", func(w *BatterWeights) *float64 { return &w.Runs }, func(s *stats.BatterStats) uint { return s.Runs }},
	{"B.H", "hits", func(w *BatterWeights) *float64 { return &w.Hits }, func(s *stats.BatterStats) uint { return s.Hits }},
	{"B.1B", "singles", func(w *BatterWeights) *float64 { return &w.Singles }, func(s *stats.BatterStats) uint { return s.Singles }},
	{"B.2B", "doubles", func(w *BatterWeights) *float64 { return &w.Doubles }, func(s *stats.BatterStats) uint { return s.Doubles }},
	{"B.3B", "triples", func(w *BatterWeights) *float64 { return &w.Triples }, func(s *stats.BatterStats) uint { return s.Triples }},
	{"B.HR", "home_runs", func(w *BatterWeights) *float64 { return &w.HomeRuns }, func(s *stats.BatterStats) uint { return s.HomeRuns }},
	{"B.RBI", "runs_batted_in", func(w *BatterWeights) *float64 { return &w.RunsBattedIn }, func(s *stats.BatterStats) uint { return s.RunsBattedIn }},
	{"B.SAC", "sacrifice_hits", func(w *BatterWeights) *float64 { return &w.SacrificeHits }, func(s *stats.BatterStats) uint { return s.SacrificeHits }},
	{"B.SB", "stolen_bases", func(w *BatterWeights) *float64 { return &w.StolenBases }, func(s *stats.BatterStats) uint { return s.StolenBases }},
	{"B.CS", "caught_stealing", func(w *BatterWeights) *float64 { return &w.CaughtStealing }, func(s *stats.BatterStats) uint { return s.CaughtStealing }},
	{"B.BB", "walks", func(w *BatterWeights) *float64 { return &w.Walks }, func(s *stats.BatterStats) uint { return s.Walks }},
	{"B.IBB", "intentional_walks", func(w *BatterWeights) *float64 { return &w.IntentionalWalks }, func(s *stats.BatterStats) uint { return s.IntentionalWalks }},
	{"B.HBP", "hit_by_pitch", func(w *BatterWeights) *float64 { return &w.HitByPitch }, func(s *stats.BatterStats) uint { return s.HitByPitch }},
	{"B.K", "strikeouts", func(w *BatterWeights) *float64 { return &w.Strikeouts }, func(s *stats.BatterStats) uint { return s.Strikeouts }},
	{"B.GIDP", "ground_into_double_play", func(w *BatterWeights) *float64 { return &w.GroundIntoDoublePlay }, func(s *stats.BatterStats) uint { return s.GroundIntoDoublePlay }},
	{"B.TB", "total_bases", func(w *BatterWeights) *float64 { return &w.TotalBases }, func(s *stats.BatterStats) uint { return s.TotalBases }},
}

// pitcherFields is the canonical pitching column order. Innings pitched has
// no integer accessor and is handled by InningScore.
var pitcherFields = []pitcherField{
	{InningsPitchedCode, "innings_pitched", func(w *PitcherWeights) *float64 { return &w.InningsPitched }, nil},
	{"P.W", "wins", func(w *PitcherWeights) *float64 { return &w.Wins }, func(s *stats.PitcherStats) uint { return s.Wins }},
	{"P.L", "losses", func(w *PitcherWeights) *float64 { return &w.Losses }, func(s *stats.PitcherStats) uint { return s.Losses }},
	{"P.CG", "complete_games", func(w *PitcherWeights) *float64 { return &w.CompleteGames }, func(s *stats.PitcherStats) uint { return s.CompleteGames }},
	{"P.SHO", "shutouts", func(w *PitcherWeights) *float64 { return &w.Shutouts }, func(s *stats.PitcherStats) uint { return s.Shutouts }},
	{"P.SV", "saves", func(w *PitcherWeights) *float64 { return &w.Saves }, func(s *stats.PitcherStats) uint { return s.Saves }},
	{"P.OUT", "outs", func(w *PitcherWeights) *float64 { return &w.Outs }, func(s *stats.PitcherStats) uint { return s.Outs }},
	{"P.H", "hits", func(w *PitcherWeights) *float64 { return &w.Hits }, func(s *stats.PitcherStats) uint { return s.Hits }},
	{"P.ER", "earned_runs", func(w *PitcherWeights) *float64 { return &w.EarnedRuns }, func(s *stats.PitcherStats) uint { return s.EarnedRuns }},
	{"P.HR", "home_runs", func(w *PitcherWeights) *float64 { return &w.HomeRuns }, func(s *stats.PitcherStats) uint { return s.HomeRuns }},
	{"P.BB", "walks", func(w *PitcherWeights) *float64 { return &w.Walks }, func(s *stats.PitcherStats) uint { return s.Walks }},
	{"P.IBB", "intentional_walks", func(w *PitcherWeights) *float64 { return &w.IntentionalWalks }, func(s *stats.PitcherStats) uint { return s.IntentionalWalks }},
	{"P.HBP", "hit_batters", func(w *PitcherWeights) *float64 { return &w.HitBatters }, func(s *stats.PitcherStats) uint { return s.HitBatters }},
	{"P.K", "strikeouts", func(w *PitcherWeights) *float64 { return &w.Strikeouts }, func(s *stats.PitcherStats) uint { return s.Strikeouts }},
	{"P.SB", "stolen_bases_allowed", func(w *PitcherWeights) *float64 { return &w.StolenBasesAllowed }, func(s *stats.PitcherStats) uint { return s.StolenBasesAllowed }},
	{"P.GIDP", "batters_grounded_into_double_plays", func(w *PitcherWeights) *float64 { return &w.BattersGroundedIntoDoublePlays }, func(s *stats.PitcherStats) uint { return s.BattersGroundedIntoDoublePlays }},
	{"P.TB", "total_bases_allowed", func(w *PitcherWeights) *float64 { return &w.TotalBasesAllowed }, func(s *stats.PitcherStats) uint { return s.TotalBasesAllowed }},
}

// HeaderItems lists the common columns followed by the code of every
// non-zero weight, batting first. It is recomputed on every call.
func (r ScoringRule) HeaderItems() []string {
	items := append([]string{}, CommonHeaders...)
	for _, f := range batterFields {
		if *f.weight(&r.Batter) != 0 {
			items = append(items, f.code)
		}
	}
	for _, f := range pitcherFields {
		if *f.weight(&r.Pitcher) != 0 {
			items = append(items, f.code)
		}
	}
	return items
}

// HeaderItemsForBatter is HeaderItems without pitching columns.
func (r ScoringRule) HeaderItemsForBatter() []string {
	return filterHeaders(r.HeaderItems(), "P.")
}

// HeaderItemsForPitcher is HeaderItems without batting columns.
func (r ScoringRule) HeaderItemsForPitcher() []string {
	return filterHeaders(r.HeaderItems(), "B.")
}

func filterHeaders(items []string, dropPrefix string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.HasPrefix(item, dropPrefix) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Score computes fantasy points for one (possibly merged) stat line.
func (r ScoringRule) Score(p stats.RawPlayer) float64 {
	var points float64

	if bs := p.BatterStats; bs != nil {
		for _, f := range batterFields {
			points += float64(f.value(bs)) * *f.weight(&r.Batter)
		}
	}

	if ps := p.PitcherStats; ps != nil {
		points += stats.InningScore(ps.InningsPitched, r.Pitcher.InningsPitched)
		for _, f := range pitcherFields {
			if f.value == nil {
				continue
			}
			points += float64(f.value(ps)) * *f.weight(&r.Pitcher)
		}
	}

	return points
}

// Validate rejects weights that are not finite numbers.
func (r ScoringRule) Validate() error {
	for _, f := range batterFields {
		if w := *f.weight(&r.Batter); math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: batter %s", ErrInvalidWeight, f.name)
		}
	}
	for _, f := range pitcherFields {
		if w := *f.weight(&r.Pitcher); math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: pitcher %s", ErrInvalidWeight, f.name)
		}
	}
	return nil
}

// ColumnValue returns the raw statistic behind a column code. ok is false
// when the code is unknown or the player has no stat block for it.
func ColumnValue(p stats.RawPlayer, code string) (float64, bool) {
	switch {
	case strings.HasPrefix(code, "B."):
		if p.BatterStats == nil {
			return 0, false
		}
		for _, f := range batterFields {
			if f.code == code {
				return float64(f.value(p.BatterStats)), true
			}
		}
	case strings.HasPrefix(code, "P."):
		if p.PitcherStats == nil {
			return 0, false
		}
		if code == InningsPitchedCode {
			return p.PitcherStats.InningsPitched, true
		}
		for _, f := range pitcherFields {
			if f.code == code {
				return float64(f.value(p.PitcherStats)), true
			}
		}
	}
	return 0, false
}
