package stats

import "github.com/sirupsen/logrus"

// Add returns the field-wise sum of two batting lines.
func (b BatterStats) Add(o BatterStats) BatterStats {
	return BatterStats{
		AtBats:               b.AtBats + o.AtBats,
		Runs:                 b.Runs + o.Runs,
		Hits:                 b.Hits + o.Hits,
		Singles:              b.Singles + o.Singles,
		Doubles:              b.Doubles + o.Doubles,
		Triples:              b.Triples + o.Triples,
		HomeRuns:             b.HomeRuns + o.HomeRuns,
		RunsBattedIn:         b.RunsBattedIn + o.RunsBattedIn,
		SacrificeHits:        b.SacrificeHits + o.SacrificeHits,
		StolenBases:          b.StolenBases + o.StolenBases,
		CaughtStealing:       b.CaughtStealing + o.CaughtStealing,
		Walks:                b.Walks + o.Walks,
		IntentionalWalks:     b.IntentionalWalks + o.IntentionalWalks,
		HitByPitch:           b.HitByPitch + o.HitByPitch,
		Strikeouts:           b.Strikeouts + o.Strikeouts,
		GroundIntoDoublePlay: b.GroundIntoDoublePlay + o.GroundIntoDoublePlay,
		TotalBases:           b.TotalBases + o.TotalBases,
	}
}

// Add returns the sum of two pitching lines; innings roll over per AddInnings.
func (p PitcherStats) Add(o PitcherStats) PitcherStats {
	return PitcherStats{
		InningsPitched:                 AddInnings(p.InningsPitched, o.InningsPitched),
		Wins:                           p.Wins + o.Wins,
		Losses:                         p.Losses + o.Losses,
		CompleteGames:                  p.CompleteGames + o.CompleteGames,
		Shutouts:                       p.Shutouts + o.Shutouts,
		Saves:                          p.Saves + o.Saves,
		Outs:                           p.Outs + o.Outs,
		Hits:                           p.Hits + o.Hits,
		EarnedRuns:                     p.EarnedRuns + o.EarnedRuns,
		HomeRuns:                       p.HomeRuns + o.HomeRuns,
		Walks:                          p.Walks + o.Walks,
		IntentionalWalks:               p.IntentionalWalks + o.IntentionalWalks,
		HitBatters:                     p.HitBatters + o.HitBatters,
		Strikeouts:                     p.Strikeouts + o.Strikeouts,
		StolenBasesAllowed:             p.StolenBasesAllowed + o.StolenBasesAllowed,
		BattersGroundedIntoDoublePlays: p.BattersGroundedIntoDoublePlays + o.BattersGroundedIntoDoublePlays,
		TotalBasesAllowed:              p.TotalBasesAllowed + o.TotalBasesAllowed,
	}
}

// Merge folds o's stat blocks into a copy of p. Identity fields of p win.
func (p RawPlayer) Merge(o RawPlayer) RawPlayer {
	out := p.Clone()

	switch {
	case out.BatterStats == nil && o.BatterStats != nil:
		bs := *o.BatterStats
		out.BatterStats = &bs
	case out.BatterStats != nil && o.BatterStats != nil:
		bs := out.BatterStats.Add(*o.BatterStats)
		out.BatterStats = &bs
	}

	switch {
	case out.PitcherStats == nil && o.PitcherStats != nil:
		ps := *o.PitcherStats
		out.PitcherStats = &ps
	case out.PitcherStats != nil && o.PitcherStats != nil:
		ps := out.PitcherStats.Add(*o.PitcherStats)
		out.PitcherStats = &ps
	}

	return out
}

// Sanitize clamps malformed innings values in place and logs each
// correction. It returns the number of records touched.
func Sanitize(players []RawPlayer, log *logrus.Entry) int {
	fixed := 0
	for i := range players {
		ps := players[i].PitcherStats
		if ps == nil {
			continue
		}
		normalized, ok := NormalizeInnings(ps.InningsPitched)
		if ok {
			continue
		}
		if log != nil {
			log.WithFields(logrus.Fields{
				"player":  players[i].Name,
				"innings": ps.InningsPitched,
				"clamped": normalized,
			}).Warn("Malformed innings pitched value clamped")
		}
		ps.InningsPitched = normalized
		fixed++
	}
	return fixed
}
