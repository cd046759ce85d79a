package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/mlbh2h/internal/cache"
	"github.com/fortuna/mlbh2h/internal/ingest/sportradar"
	"github.com/fortuna/mlbh2h/internal/publisher"
	"github.com/fortuna/mlbh2h/internal/schedule"
	"github.com/fortuna/mlbh2h/internal/stats"
	"github.com/sirupsen/logrus"
)

// Source names where a date's records came from.
type Source string

const (
	SourceFile     Source = "file"
	SourceRedis    Source = "redis"
	SourceArchive  Source = "archive"
	SourceProvider Source = "provider"
	SourceNone     Source = "none"
)

// Provider downloads one date's records from the stats provider.
type Provider interface {
	FetchPlayers(ctx context.Context, date time.Time) ([]stats.RawPlayer, error)
}

// Mirror is a shared cache consulted after the local files.
type Mirror interface {
	LoadDate(ctx context.Context, date string) ([]stats.RawPlayer, bool, error)
	SaveDate(ctx context.Context, date string, players []stats.RawPlayer) error
}

// Archive is the long-term store of downloaded dates.
type Archive interface {
	LoadDates(ctx context.Context, dates []string) (map[string][]stats.RawPlayer, error)
	SaveDate(ctx context.Context, date string, players []stats.RawPlayer) error
}

// EventPublisher announces freshly downloaded dates.
type EventPublisher interface {
	PublishStatsIngested(ctx context.Context, event publisher.StatsIngested) error
}

// Event reports the outcome of loading one date.
type Event struct {
	Date    string `json:"date"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Source  Source `json:"source"`
	Players int    `json:"players"`
}

// DateRecords are the raw records of one date.
type DateRecords struct {
	Date    string
	Source  Source
	Players []stats.RawPlayer
}

// Loader resolves a date's records from the file cache, the shared mirror,
// the archive and finally the provider, in that order. Downloaded dates are
// written back to every configured store.
type Loader struct {
	files    *cache.FileCache
	mirror   Mirror
	archive  Archive
	events   EventPublisher
	provider Provider
	progress func(Event)
	log      *logrus.Entry
}

// Option configures a Loader.
type Option func(*Loader)

// WithMirror adds a shared cache.
func WithMirror(m Mirror) Option { return func(l *Loader) { l.mirror = m } }

// WithArchive adds a long-term store.
func WithArchive(a Archive) Option { return func(l *Loader) { l.archive = a } }

// WithPublisher adds an ingest event sink.
func WithPublisher(p EventPublisher) Option { return func(l *Loader) { l.events = p } }

// WithProvider sets the remote source. Without one, a date missing from every
// store fails with sportradar.ErrAPIKeyMissing.
func WithProvider(p Provider) Option { return func(l *Loader) { l.provider = p } }

// WithProgress registers a callback invoked after each date of LoadDates.
func WithProgress(fn func(Event)) Option { return func(l *Loader) { l.progress = fn } }

// NewLoader creates a loader over the local file cache.
func NewLoader(files *cache.FileCache, log *logrus.Entry, opts ...Option) *Loader {
	l := &Loader{files: files, log: log}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadDate returns date's records. A failed download yields zero players
// and no error; only configuration problems and cancellation are returned.
func (l *Loader) LoadDate(ctx context.Context, date string) (DateRecords, error) {
	log := l.log.WithField("date", date)

	day, err := schedule.ParseDate(date)
	if err != nil {
		return DateRecords{}, err
	}

	// the file is authoritative, so a corrupt one counts as an empty date
	// until it is removed
	if players, ok, err := l.files.Load(date); err != nil {
		log.WithError(err).WithField("path", l.files.Path(date)).Warn("unreadable stats file, treating date as empty")
		return DateRecords{Date: date, Source: SourceNone}, nil
	} else if ok {
		return l.found(date, SourceFile, players, log), nil
	}

	if l.mirror != nil {
		players, ok, err := l.mirror.LoadDate(ctx, date)
		if err != nil {
			log.WithError(err).Warn("redis lookup failed")
		} else if ok {
			l.saveFile(date, players, log)
			return l.found(date, SourceRedis, players, log), nil
		}
	}

	if l.archive != nil {
		byDate, err := l.archive.LoadDates(ctx, []string{date})
		if err != nil {
			log.WithError(err).Warn("archive lookup failed")
		} else if players, ok := byDate[date]; ok && len(players) > 0 {
			l.saveFile(date, players, log)
			return l.found(date, SourceArchive, players, log), nil
		}
	}

	if l.provider == nil {
		return DateRecords{}, fmt.Errorf("stats for %s are not cached: %w", date, sportradar.ErrAPIKeyMissing)
	}

	players, err := l.provider.FetchPlayers(ctx, day)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return DateRecords{}, ctxErr
		}
		log.WithError(err).Error("fetch failed, treating date as empty")
		return DateRecords{Date: date, Source: SourceNone}, nil
	}
	if len(players) == 0 {
		log.Info("no players fetched, nothing cached")
		return DateRecords{Date: date, Source: SourceNone}, nil
	}

	stats.Sanitize(players, log)
	l.store(ctx, date, players, log)
	return DateRecords{Date: date, Source: SourceProvider, Players: players}, nil
}

// LoadDates loads each date in order, reporting progress after each one.
func (l *Loader) LoadDates(ctx context.Context, dates []string) ([]DateRecords, error) {
	out := make([]DateRecords, 0, len(dates))
	for i, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := l.LoadDate(ctx, date)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)

		if l.progress != nil {
			l.progress(Event{
				Date:    date,
				Index:   i,
				Total:   len(dates),
				Source:  rec.Source,
				Players: len(rec.Players),
			})
		}
	}
	return out, nil
}

// Flatten concatenates the players of every date.
func Flatten(days []DateRecords) []stats.RawPlayer {
	var all []stats.RawPlayer
	for _, d := range days {
		all = append(all, d.Players...)
	}
	return all
}

func (l *Loader) found(date string, src Source, players []stats.RawPlayer, log *logrus.Entry) DateRecords {
	stats.Sanitize(players, log)
	log.WithFields(logrus.Fields{"source": src, "players": len(players)}).Debug("stats loaded")
	return DateRecords{Date: date, Source: src, Players: players}
}

func (l *Loader) saveFile(date string, players []stats.RawPlayer, log *logrus.Entry) {
	if err := l.files.Save(date, players); err != nil && !errors.Is(err, cache.ErrStatsFileExists) {
		log.WithError(err).Warn("failed to write stats file")
	}
}

func (l *Loader) store(ctx context.Context, date string, players []stats.RawPlayer, log *logrus.Entry) {
	if err := l.files.Save(date, players); err != nil {
		log.WithError(err).Error("failed to write stats file")
	}

	if l.mirror != nil {
		if err := l.mirror.SaveDate(ctx, date, players); err != nil {
			log.WithError(err).Warn("failed to mirror stats to redis")
		}
	}
	if l.archive != nil {
		if err := l.archive.SaveDate(ctx, date, players); err != nil {
			log.WithError(err).Warn("failed to archive stats")
		}
	}
	if l.events != nil {
		event := publisher.StatsIngested{Date: date, Players: len(players), Source: string(SourceProvider)}
		if err := l.events.PublishStatsIngested(ctx, event); err != nil {
			log.WithError(err).Warn("failed to publish ingest event")
		}
	}

	log.WithField("players", len(players)).Info("stats downloaded and cached")
}
