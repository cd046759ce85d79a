package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/fortuna/mlbh2h/internal/cache"
	"github.com/fortuna/mlbh2h/internal/config"
	"github.com/fortuna/mlbh2h/internal/ingest"
	"github.com/fortuna/mlbh2h/internal/ingest/sportradar"
	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/fortuna/mlbh2h/internal/logger"
	"github.com/fortuna/mlbh2h/internal/publisher"
	"github.com/fortuna/mlbh2h/internal/schedule"
	"github.com/fortuna/mlbh2h/internal/store"
	"github.com/fortuna/mlbh2h/internal/store/repository"
	"github.com/sirupsen/logrus"
)

// commonFlags are accepted by every command.
type commonFlags struct {
	dataDir  string
	apiKey   string
	logLevel string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.dataDir, "data-dir", "", "data directory (default $HOME/.mlbh2h)")
	fs.StringVar(&c.apiKey, "apikey", "", "Sportradar API key (default $SPORTRADAR_API_KEY)")
	fs.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// app holds the collaborators a command needs. Optional stores are nil when
// their URL is not configured.
type app struct {
	cfg      *config.Config
	log      *logrus.Entry
	calendar *schedule.Calendar
	leagues  *league.Store
	files    *cache.FileCache
	redis    *cache.RedisCache
	db       *store.Database
	closers  []func()
}

func newApp(flags commonFlags) (*app, error) {
	cfg, err := config.Load(flags.dataDir)
	if err != nil {
		return nil, err
	}
	if flags.apiKey != "" {
		cfg.SportradarAPIKey = flags.apiKey
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)

	calendar, err := cfg.Calendar()
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      logger.WithComponent(appName),
		calendar: calendar,
		leagues:  league.NewStore(cfg.DataDir),
		files:    cache.NewFileCache(cfg.DataDir),
	}, nil
}

// connect opens Redis and Postgres when configured. Both are optional, so a
// failed connection is logged and the store is skipped.
func (a *app) connect(ctx context.Context) {
	if a.cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(a.cfg.RedisURL, a.cfg.RedisTTL)
		if err != nil {
			a.log.WithError(err).Warn("redis unavailable, continuing without shared cache")
		} else {
			a.redis = rc
			a.closers = append(a.closers, func() { _ = rc.Close() })
			a.log.Info("connected to redis")
		}
	}

	if a.cfg.DatabaseURL != "" {
		db, err := store.NewDatabase(a.cfg.DatabaseURL, logger.WithComponent("store"))
		if err != nil {
			a.log.WithError(err).Warn("postgres unavailable, continuing without archive")
			return
		}
		if err := db.RunMigrations(ctx); err != nil {
			a.log.WithError(err).Warn("migrations failed, continuing without archive")
			_ = db.Close()
			return
		}
		a.db = db
		a.closers = append(a.closers, func() { _ = db.Close() })
		a.log.Info("connected to postgres")
	}
}

// loader builds the cache chain over every connected store.
func (a *app) loader(opts ...ingest.Option) (*ingest.Loader, error) {
	if a.cfg.SportradarAPIKey != "" {
		client, err := sportradar.NewClient(sportradar.ClientConfig{
			BaseURL:         a.cfg.SportradarBaseURL,
			APIKey:          a.cfg.SportradarAPIKey,
			RequestInterval: a.cfg.RequestInterval,
			Timeout:         a.cfg.HTTPTimeout,
			BreakerTimeout:  a.cfg.BreakerTimeout,
		}, logger.WithComponent("sportradar"))
		if err != nil && !errors.Is(err, sportradar.ErrAPIKeyMissing) {
			return nil, fmt.Errorf("create sportradar client: %w", err)
		}
		if client != nil {
			opts = append(opts, ingest.WithProvider(sportradar.NewIngester(client, logger.WithComponent("ingest"))))
		}
	}

	if a.redis != nil {
		opts = append(opts,
			ingest.WithMirror(a.redis),
			ingest.WithPublisher(publisher.NewRedisStreamPublisher(a.redis.Client())))
	}
	if a.db != nil {
		opts = append(opts, ingest.WithArchive(repository.NewStatsRepository(a.db)))
	}

	return ingest.NewLoader(a.files, logger.WithComponent("loader"), opts...), nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
