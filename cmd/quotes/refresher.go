package quotes

import (
	"context"
	"strings"
	"time"

	"tradejournal/src/contracts"
	"tradejournal/src/marketdata"
	"tradejournal/src/model"
	"tradejournal/src/repository"

	logger "github.com/sirupsen/logrus"
)

const (
	sourceStooq   = "stooq"
	sourceBinance = "binance"
)

// Refresher periodically pulls last prices for every symbol with an open
// position and writes them to the quote cache. Crypto symbols go through
// Binance, everything else through the stooq CSV feed.
type Refresher struct {
	Log    *logger.Entry
	Config *Config

	positions  *repository.PositionRepository
	quotes     *repository.QuoteRepository
	exceptions *repository.ExceptionRepository
	stooq      marketdata.QuoteProvider
	binance    marketdata.QuoteProvider
}

func (r *Refresher) Start() error {
	r.Config = GetConfig()

	r.positions = repository.NewPositionRepository()
	r.quotes = repository.NewQuoteRepository()
	r.exceptions = repository.NewExceptionRepository()
	r.stooq = marketdata.NewStooqClient(nil)
	r.binance = marketdata.NewBinanceSource()

	for {
		if err := r.refreshOnce(context.Background()); err != nil {
			r.Log.WithError(err).Error("quote refresh cycle failed")
			if r.Config.RunOnce {
				return err
			}
		}

		if r.Config.RunOnce {
			return nil
		}
		time.Sleep(r.Config.Interval)
	}
}

func (r *Refresher) refreshOnce(ctx context.Context) error {
	symbols, err := r.positions.OpenSymbols(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		r.Log.Debug("no open positions, nothing to refresh")
		return nil
	}

	var cryptoSymbols, listedSymbols []string
	for _, symbol := range symbols {
		if marketdata.IsCryptoSymbol(symbol) {
			cryptoSymbols = append(cryptoSymbols, symbol)
		} else {
			listedSymbols = append(listedSymbols, symbol)
		}
	}

	stored := 0
	stored += r.fetchAndStore(ctx, r.binance, cryptoSymbols, sourceBinance, nil)

	// Stooq wants exchange-suffixed symbols; remember the mapping so cached
	// quotes keep the journal's symbol spelling.
	stooqToJournal := make(map[string]string, len(listedSymbols))
	stooqSymbols := make([]string, 0, len(listedSymbols))
	for _, symbol := range listedSymbols {
		stooqSymbol := toStooqSymbol(symbol)
		stooqToJournal[stooqSymbol] = symbol
		stooqSymbols = append(stooqSymbols, stooqSymbol)
	}
	stored += r.fetchAndStore(ctx, r.stooq, stooqSymbols, sourceStooq, stooqToJournal)

	r.Log.WithFields(logger.Fields{
		"symbols": len(symbols),
		"stored":  stored,
	}).Info("quote refresh cycle finished")

	return nil
}

// fetchAndStore pulls one provider's quotes and upserts them. remap, when
// non-nil, translates provider symbols back to journal symbols.
func (r *Refresher) fetchAndStore(
	ctx context.Context,
	provider marketdata.QuoteProvider,
	symbols []string,
	source string,
	remap map[string]string,
) int {

	if len(symbols) == 0 {
		return 0
	}

	prices, err := provider.Quotes(ctx, symbols)
	if err != nil {
		r.Log.WithField("source", source).
			WithError(err).Error("quote fetch failed")

		_ = r.exceptions.Create(ctx, &model.Exception{
			Service: "quote_refresher",
			Module:  source,
			Method:  "Quotes",
			Message: err.Error(),
			Level:   "error",
		})
		return 0
	}

	stored := 0
	for symbol, price := range prices {
		journalSymbol := symbol
		if remap != nil {
			mapped, ok := remap[symbol]
			if !ok {
				continue
			}
			journalSymbol = mapped
		}

		if err := r.quotes.Upsert(ctx, journalSymbol, price, source); err != nil {
			continue
		}
		stored++
	}
	return stored
}

// toStooqSymbol maps a journal symbol to stooq's spelling: futures contract
// symbols quote as their root with a .F suffix (front contract), plain
// symbols without an exchange suffix default to the US market. Uppercase,
// matching the keys the stooq client returns.
func toStooqSymbol(symbol string) string {
	if parsed, ok := contracts.ParseContractSymbol(symbol); ok {
		return parsed.Base + ".F"
	}
	upper := strings.ToUpper(symbol)
	if strings.Contains(upper, ".") {
		return upper
	}
	return upper + ".US"
}
