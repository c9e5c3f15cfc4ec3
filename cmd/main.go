package main

import (
	"fmt"
	"os"

	"tradejournal/cmd/quotes"
	"tradejournal/cmd/seedspecs"
	"tradejournal/src/database"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Tradejournal CMD"
	app.Usage = "The tradejournal command line interface"

	app.Commands = []cli.Command{
		quotesCMD,
		seedSpecsCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	quotesCMD = cli.Command{
		Name:        "quotes",
		Usage:       "run the quote refresher",
		Action:      quotesAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Refresh cached quotes for all open position symbols`,
	}
	seedSpecsCMD = cli.Command{
		Name:        "seedspecs",
		Usage:       "seed contract specifications",
		Action:      seedSpecsAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Load the shipped futures contract specification defaults`,
	}
)

func quotesAction(_ *cli.Context) error {

	logrus.Info("Starting quotes CMD")
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	refresher := &quotes.Refresher{
		Log: logrus.WithField("cmd", "quotes"),
	}

	err := refresher.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting quotes cmd")
		return err
	}

	return nil
}

func seedSpecsAction(_ *cli.Context) error {

	logrus.Info("Starting seedspecs CMD")
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	seeder := &seedspecs.Seeder{
		Log: logrus.WithField("cmd", "seedspecs"),
		DB:  database.MainDB,
	}

	err := seeder.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting seedspecs cmd")
		return err
	}

	return nil
}
