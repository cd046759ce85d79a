package sportradar

import (
	"context"
	"time"

	"github.com/fortuna/mlbh2h/internal/stats"
	"github.com/sirupsen/logrus"
)

// Ingester collects every active player's line for one date.
type Ingester struct {
	client *Client
	log    *logrus.Entry
}

// NewIngester creates an ingester on top of client.
func NewIngester(client *Client, log *logrus.Entry) *Ingester {
	return &Ingester{client: client, log: log}
}

// FetchPlayers returns the raw players of every game on date. A summary
// that fails to download or decode is logged and skipped; only a schedule
// failure is returned.
func (i *Ingester) FetchPlayers(ctx context.Context, date time.Time) ([]stats.RawPlayer, error) {
	log := i.log.WithField("date", date.Format("2006-01-02"))

	gameIDs, err := i.client.FetchSchedule(ctx, date)
	if err != nil {
		return nil, err
	}
	log.WithField("games", len(gameIDs)).Info("fetched schedule")

	var players []stats.RawPlayer
	for n, id := range gameIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		summary, err := i.client.FetchGameSummary(ctx, id)
		if err != nil {
			log.WithError(err).WithField("game_id", id).Warn("skipping game summary")
			continue
		}
		players = append(players, ConvertPlayers(summary.Players())...)
		log.Debugf("game summary fetched: %d/%d", n+1, len(gameIDs))
	}

	log.WithField("players", len(players)).Info("fetched players")
	return players, nil
}
