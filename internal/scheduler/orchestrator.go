package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fortuna/mlbh2h/internal/ingest"
	"github.com/fortuna/mlbh2h/internal/schedule"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DateLoader warms one date through the cache chain.
type DateLoader interface {
	LoadDate(ctx context.Context, date string) (ingest.DateRecords, error)
}

// Config holds scheduler configuration
type Config struct {
	DailyIngestSpec      string        // standard 5-field cron, default "0 10 * * *"
	EnableDailyIngestion bool          // Default: true
	MaxRetries           int           // Default: 3
	RetryDelay           time.Duration // Default: 5m
	Location             *time.Location
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		DailyIngestSpec:      "0 10 * * *",
		EnableDailyIngestion: true,
		MaxRetries:           3,
		RetryDelay:           5 * time.Minute,
		Location:             time.Local,
	}
}

// RunInfo tracks the outcome of scheduled runs.
type RunInfo struct {
	LastRun    time.Time     `json:"last_run"`
	LastDate   string        `json:"last_date"`
	LastSource ingest.Source `json:"last_source"`
	RunCount   int           `json:"run_count"`
	ErrorCount int           `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
}

// Orchestrator warms the previous day's stats on a cron schedule.
type Orchestrator struct {
	loader DateLoader
	config *Config
	cron   *cron.Cron
	now    func() time.Time
	log    *logrus.Entry

	mu   sync.Mutex
	info RunInfo
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(loader DateLoader, config *Config, log *logrus.Entry) (*Orchestrator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if _, err := cron.ParseStandard(config.DailyIngestSpec); err != nil {
		return nil, fmt.Errorf("invalid daily ingest schedule %q: %w", config.DailyIngestSpec, err)
	}

	return &Orchestrator{
		loader: loader,
		config: config,
		cron:   cron.New(cron.WithLocation(config.Location), cron.WithLogger(cron.PrintfLogger(log))),
		now:    time.Now,
		log:    log,
	}, nil
}

// Start schedules the daily ingest and blocks until ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	o.log.WithFields(logrus.Fields{
		"daily_ingest": o.config.EnableDailyIngestion,
		"schedule":     o.config.DailyIngestSpec,
	}).Info("scheduler starting")

	if o.config.EnableDailyIngestion {
		_, err := o.cron.AddFunc(o.config.DailyIngestSpec, func() {
			if err := o.RunDailyIngest(ctx); err != nil {
				o.log.WithError(err).Error("daily ingest failed")
			}
		})
		if err != nil {
			o.log.WithError(err).Error("failed to schedule daily ingest")
		}
	}

	o.cron.Start()
	<-ctx.Done()
	o.Stop()
	o.log.Info("scheduler stopped")
}

// Stop halts the cron and waits for a running ingest to finish.
func (o *Orchestrator) Stop() {
	<-o.cron.Stop().Done()
}

// RunDailyIngest loads yesterday's stats, retrying while the provider yields
// nothing.
func (o *Orchestrator) RunDailyIngest(ctx context.Context) error {
	date := schedule.FormatDate(o.now().In(o.config.Location).AddDate(0, 0, -1))
	log := o.log.WithField("date", date)

	var (
		rec ingest.DateRecords
		err error
	)
	attempts := o.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		rec, err = o.loader.LoadDate(ctx, date)
		if err != nil || rec.Source != ingest.SourceNone {
			break
		}
		if attempt == attempts {
			break
		}

		log.WithField("attempt", attempt).Warn("no stats yet, retrying")
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(o.config.RetryDelay):
		}
		if err != nil {
			break
		}
	}

	o.record(date, rec, err)
	if err != nil {
		return fmt.Errorf("daily ingest %s: %w", date, err)
	}

	log.WithFields(logrus.Fields{
		"source":  rec.Source,
		"players": len(rec.Players),
	}).Info("daily ingest finished")
	return nil
}

// Info returns a snapshot of the run counters.
func (o *Orchestrator) Info() RunInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.info
}

func (o *Orchestrator) record(date string, rec ingest.DateRecords, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.info.LastRun = o.now()
	o.info.LastDate = date
	o.info.LastSource = rec.Source
	o.info.RunCount++
	o.info.LastError = ""
	if err != nil {
		o.info.ErrorCount++
		o.info.LastError = err.Error()
	}
}
