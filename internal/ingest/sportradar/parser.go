package sportradar

import (
	"strings"

	"github.com/fortuna/mlbh2h/internal/stats"
)

// activeStatus marks players who appeared in the game.
const activeStatus = "A"

// Players returns both box scores of a summary, home first.
func (s *Summary) Players() []Player {
	players := make([]Player, 0, len(s.Game.Home.Players)+len(s.Game.Away.Players))
	players = append(players, s.Game.Home.Players...)
	return append(players, s.Game.Away.Players...)
}

// ConvertPlayers turns active box score entries into raw player records.
// A batting line is kept only for non-pitchers.
func ConvertPlayers(players []Player) []stats.RawPlayer {
	out := make([]stats.RawPlayer, 0, len(players))
	for _, p := range players {
		if p.Status != activeStatus {
			continue
		}
		out = append(out, convertPlayer(p))
	}
	return out
}

func convertPlayer(p Player) stats.RawPlayer {
	raw := stats.RawPlayer{
		Name:            strings.TrimSpace(p.PreferredName + " " + p.LastName),
		Position:        p.Position,
		PrimaryPosition: p.PrimaryPosition,
	}

	if h := p.Statistics.Hitting; h != nil && p.Position != "P" {
		raw.BatterStats = convertHitting(h.Overall)
	}
	if pt := p.Statistics.Pitching; pt != nil {
		raw.PitcherStats = convertPitching(pt.Overall)
	}
	return raw
}

func convertHitting(o HittingOverall) *stats.BatterStats {
	return &stats.BatterStats{
		AtBats:               o.AB,
		Runs:                 o.Runs.Total,
		Hits:                 o.OnBase.H,
		Singles:              o.OnBase.S,
		Doubles:              o.OnBase.D,
		Triples:              o.OnBase.T,
		HomeRuns:             o.OnBase.HR,
		RunsBattedIn:         o.RBI,
		SacrificeHits:        o.Outs.SacHit,
		StolenBases:          o.Steal.Stolen,
		CaughtStealing:       o.Steal.Caught,
		Walks:                o.OnBase.BB,
		IntentionalWalks:     o.OnBase.IBB,
		HitByPitch:           o.OnBase.HBP,
		Strikeouts:           o.Outs.KTotal,
		GroundIntoDoublePlay: o.Outs.GIDP,
		TotalBases:           o.OnBase.TB,
	}
}

func convertPitching(o PitchingOverall) *stats.PitcherStats {
	return &stats.PitcherStats{
		InningsPitched:                 o.IP,
		Wins:                           o.Games.Win,
		Losses:                         o.Games.Loss,
		CompleteGames:                  o.Games.Complete,
		Shutouts:                       o.Games.Shutout,
		Saves:                          o.Games.Save,
		Outs:                           o.Outs1,
		Hits:                           o.OnBase.H,
		EarnedRuns:                     o.Runs.Earned,
		HomeRuns:                       o.OnBase.HR,
		Walks:                          o.OnBase.BB,
		IntentionalWalks:               o.OnBase.IBB,
		HitBatters:                     o.OnBase.HBP,
		Strikeouts:                     o.Outs.KTotal,
		StolenBasesAllowed:             o.Steal.Stolen,
		BattersGroundedIntoDoublePlays: o.Outs.GIDP,
		TotalBasesAllowed:              o.OnBase.TB,
	}
}
