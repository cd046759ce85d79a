package yahoo

import (
	"context"
	"fmt"
	"os"

	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/sirupsen/logrus"
)

// PageFetcher renders a roster page.
type PageFetcher interface {
	FetchRosterPage(ctx context.Context, url string) (string, error)
}

// Importer turns Yahoo roster pages into saved league rosters.
type Importer struct {
	leagues *league.Store
	fetcher PageFetcher
	log     *logrus.Entry
}

// NewImporter creates an importer. fetcher may be nil when only files are
// imported.
func NewImporter(leagues *league.Store, fetcher PageFetcher, log *logrus.Entry) *Importer {
	return &Importer{leagues: leagues, fetcher: fetcher, log: log}
}

// ImportFile parses a saved page and stores it as name's roster.
func (im *Importer) ImportFile(name, path string, force bool) (league.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return league.Roster{}, fmt.Errorf("open roster page: %w", err)
	}
	defer f.Close()

	roster, err := ParseRosters(f)
	if err != nil {
		return roster, fmt.Errorf("parse %s: %w", path, err)
	}
	return roster, im.save(name, roster, force)
}

// ImportURL fetches and parses a live page and stores it as name's roster.
func (im *Importer) ImportURL(ctx context.Context, name, url string, force bool) (league.Roster, error) {
	if im.fetcher == nil {
		return league.Roster{}, fmt.Errorf("no page fetcher configured")
	}

	html, err := im.fetcher.FetchRosterPage(ctx, url)
	if err != nil {
		return league.Roster{}, err
	}

	roster, err := ParseRostersHTML(html)
	if err != nil {
		return roster, fmt.Errorf("parse %s: %w", url, err)
	}
	return roster, im.save(name, roster, force)
}

func (im *Importer) save(name string, roster league.Roster, force bool) error {
	if err := im.leagues.SaveRoster(name, roster, force); err != nil {
		return err
	}
	im.log.WithFields(logrus.Fields{
		"league":  name,
		"players": len(roster.Players),
		"teams":   len(roster.Teams()),
	}).Info("roster imported")
	return nil
}
