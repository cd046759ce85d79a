package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fortuna/mlbh2h/internal/ingest/yahoo"
	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/fortuna/mlbh2h/internal/logger"
)

var stdin io.Reader = os.Stdin

func runNewLeague(_ context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("new-league", flag.ContinueOnError)
	var (
		common commonFlags
		name   = fs.String("n", "", "name of the new league")
		force  = fs.Bool("force", false, "replace an existing league")
	)
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := league.ValidateName(*name); err != nil {
		return err
	}

	a, err := newApp(common)
	if err != nil {
		return err
	}
	defer a.close()

	if a.leagues.Exists(*name) && !*force {
		return fmt.Errorf("%w: %s (use -force to replace it)", league.ErrLeagueExists, *name)
	}

	p := league.NewPrompter(stdin, stdout)
	fmt.Fprintln(stdout, "Enter the points per statistic. Leave empty for 0.")
	rule, err := p.ReadScoringRule()
	if err != nil {
		return err
	}
	roster, err := p.ReadRoster()
	if err != nil {
		return err
	}

	if err := a.leagues.Create(*name, rule, roster, *force); err != nil {
		return err
	}
	a.log.WithField("league", *name).Info("league created")
	fmt.Fprintf(stdout, "League %s saved to %s\n", *name, a.leagues.Dir(*name))
	return nil
}

func runImportRoster(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("import-roster", flag.ContinueOnError)
	var (
		common commonFlags
		name   = fs.String("l", "", "league to import the roster into")
		file   = fs.String("file", "", "saved Yahoo roster page")
		url    = fs.String("url", "", "Yahoo roster page URL, rendered with headless Chrome")
		force  = fs.Bool("force", false, "replace an existing roster")
	)
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*file == "") == (*url == "") {
		return errors.New("specify exactly one of -file or -url")
	}

	a, err := newApp(common)
	if err != nil {
		return err
	}
	defer a.close()

	var importer *yahoo.Importer
	var roster league.Roster
	if *file != "" {
		importer = yahoo.NewImporter(a.leagues, nil, logger.WithComponent("yahoo"))
		roster, err = importer.ImportFile(*name, *file, *force)
	} else {
		client := yahoo.NewClient(logger.WithComponent("chromedp"))
		defer client.Close()
		importer = yahoo.NewImporter(a.leagues, client, logger.WithComponent("yahoo"))
		roster, err = importer.ImportURL(ctx, *name, *url, *force)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Imported %d teams into league %s\n", len(roster.Teams()), *name)
	return nil
}
