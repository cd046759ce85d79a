package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"time"

	"github.com/fortuna/mlbh2h/internal/api/rest"
	"github.com/fortuna/mlbh2h/internal/api/websocket"
	"github.com/fortuna/mlbh2h/internal/backfill"
	"github.com/fortuna/mlbh2h/internal/ingest"
	"github.com/fortuna/mlbh2h/internal/logger"
	"github.com/fortuna/mlbh2h/internal/scheduler"
	"github.com/fortuna/mlbh2h/internal/service"
)

func runServe(ctx context.Context, args []string, _ io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var (
		common commonFlags
		port   = fs.String("port", "", "REST port (default rest_port)")
	)
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(common)
	if err != nil {
		return err
	}
	defer a.close()
	if *port == "" {
		*port = a.cfg.RestPort
	}

	a.log.Infof("Starting %s v%s", appName, appVersion)
	a.connect(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub(logger.WithComponent("ws"))
	go hub.Run(ctx)
	progress := websocket.NewProgressReporter(hub)
	wsServer := websocket.NewServer(hub, logger.WithComponent("ws"))

	loader, err := a.loader(ingest.WithProgress(progress.LoaderProgress))
	if err != nil {
		return err
	}

	reports := service.NewReportService(a.leagues, loader, a.calendar, a.cfg.Thresholds(), logger.WithComponent("report"))

	var jobs backfill.JobStore = backfill.NewMemoryRepository()
	if a.db != nil {
		jobs = backfill.NewRepository(a.db)
	}
	backfillService := backfill.NewService(jobs, backfill.NewRunner(loader, a.calendar),
		logger.WithComponent("backfill"), backfill.WithObserver(progress))
	backfillService.Start()
	a.log.Info("backfill service started")

	schedConfig := scheduler.DefaultConfig()
	schedConfig.DailyIngestSpec = a.cfg.DailyIngestCron
	schedConfig.EnableDailyIngestion = a.cfg.EnableDailyIngest
	sched, err := scheduler.NewOrchestrator(loader, schedConfig, logger.WithComponent("scheduler"))
	if err != nil {
		return err
	}
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		sched.Start(ctx)
	}()

	handler := rest.NewHandler(reports, a.leagues, logger.WithComponent("rest"))
	if a.redis != nil {
		handler.AddHealthCheck("redis", a.redis.HealthCheck)
	}
	if a.db != nil {
		handler.AddHealthCheck("postgres", a.db.HealthCheck)
	}

	restServer := rest.NewServer(*port, handler, backfillService, wsServer)
	serveErr := make(chan error, 1)
	go func() {
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	a.log.WithField("port", *port).Info("REST API and progress feed listening")

	select {
	case <-ctx.Done():
		err = nil
	case err = <-serveErr:
	}

	a.log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := restServer.Shutdown(shutdownCtx); shutdownErr != nil {
		a.log.WithError(shutdownErr).Warn("REST server shutdown error")
	}
	_ = wsServer.Shutdown(shutdownCtx)
	if shutdownErr := backfillService.Shutdown(shutdownCtx); shutdownErr != nil {
		a.log.WithError(shutdownErr).Warn("backfill shutdown error")
	}
	<-schedDone

	a.log.Info("stopped")
	return err
}
