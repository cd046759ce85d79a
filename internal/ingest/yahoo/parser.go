package yahoo

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/fortuna/mlbh2h/internal/stats"
)

const (
	teamSelector   = `div.Grid-u-1-2.Pend-xl`
	nameSelector   = `td.player div.Grid-bind-end div.ysf-player-name a.name`
	positionSelect = `td.pos`
)

// ParseRosters reads a Yahoo fantasy "rosters" page into a league roster.
// Empty roster slots are skipped.
func ParseRosters(r io.Reader) (league.Roster, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return league.Roster{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var roster league.Roster
	doc.Find(`div.Bd`).Find(teamSelector).Each(func(_ int, s *goquery.Selection) {
		team := strings.TrimSpace(s.Find(`p a`).First().Text())
		if team == "" {
			return
		}

		s.Find(`tbody tr`).Each(func(_ int, row *goquery.Selection) {
			name := strings.TrimSpace(row.Find(nameSelector).First().Text())
			if name == "" {
				return
			}
			pos := strings.TrimSpace(row.Find(positionSelect).First().Text())

			roster.Players = append(roster.Players, league.RosterPlayer{
				Name: name,
				Role: roleForSlot(pos),
				Team: team,
			})
		})
	})

	if len(roster.Players) == 0 {
		return roster, fmt.Errorf("no roster entries found")
	}
	return roster, nil
}

// ParseRostersHTML is ParseRosters over a string.
func ParseRostersHTML(html string) (league.Roster, error) {
	return ParseRosters(strings.NewReader(html))
}

func roleForSlot(pos string) stats.Role {
	switch pos {
	case "SP", "RP", "P":
		return stats.RolePitcher
	default:
		return stats.RoleBatter
	}
}
