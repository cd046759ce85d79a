package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fortuna/mlbh2h/internal/logger"
)

const (
	appName    = "mlbh2h"
	appVersion = "1.0.0"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string, stdout io.Writer) error
}

func commands() []command {
	return []command{
		{"report", "print fantasy reports for a league (default)", runReport},
		{"dates", "print the dates a date and range resolve to", runDates},
		{"new-league", "create a league interactively", runNewLeague},
		{"import-roster", "import a Yahoo roster page as a league roster", runImportRoster},
		{"backfill", "warm the stats cache for a date range", runBackfill},
		{"serve", "run the REST API, progress feed and daily ingest", runServe},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.GetLogger().WithError(err).Error(appName + " failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	name := "report"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		name, args = args[0], args[1:]
	}

	if name == "help" || name == "version" {
		fmt.Fprintf(stdout, "%s v%s\n\ncommands:\n", appName, appVersion)
		for _, c := range commands() {
			fmt.Fprintf(stdout, "  %-14s %s\n", c.name, c.summary)
		}
		return nil
	}

	for _, c := range commands() {
		if c.name == name {
			return c.run(ctx, args, stdout)
		}
	}
	return fmt.Errorf("unknown command %q (run %s help)", name, appName)
}
