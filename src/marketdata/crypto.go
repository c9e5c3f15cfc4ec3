package marketdata

import (
	"context"
	"net/http"
	"strings"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	logger "github.com/sirupsen/logrus"
)

// BinanceSource quotes crypto symbols through the public Binance ticker API.
type BinanceSource struct {
	exchange goex.API
}

func NewBinanceSource() *BinanceSource {
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}
	return &BinanceSource{
		exchange: binance.NewWithConfig(apiConfig),
	}
}

// Quotes returns last prices for crypto symbols like BTCUSDT or ETH-USD.
// Symbols the exchange rejects are skipped; the remaining batch still lands.
func (s *BinanceSource) Quotes(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))

	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			return prices, ctx.Err()
		default:
		}

		pair, ok := currencyPair(symbol)
		if !ok {
			logger.WithField("symbol", symbol).Debug("[marketdata] not a crypto pair, skipping")
			continue
		}

		ticker, err := s.exchange.GetTicker(pair)
		if err != nil {
			logger.WithField("symbol", symbol).
				WithError(err).Warn("[marketdata] binance ticker failed, skipping symbol")
			continue
		}

		prices[symbol] = ticker.Last
	}

	return prices, nil
}

// IsCryptoSymbol reports whether a journal symbol looks like a crypto pair
// the Binance source can quote.
func IsCryptoSymbol(symbol string) bool {
	_, ok := currencyPair(symbol)
	return ok
}

// currencyPair maps journal symbols (BTCUSDT, ETH-USD, SOL/USDT) onto goex
// currency pairs. Unknown shapes report ok=false.
func currencyPair(symbol string) (goex.CurrencyPair, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	normalized = strings.NewReplacer("-", "", "/", "").Replace(normalized)

	for _, quote := range []string{"USDT", "USDC", "BUSD", "USD", "BTC", "ETH"} {
		if base, found := strings.CutSuffix(normalized, quote); found && base != "" {
			return goex.NewCurrencyPair2(base + "_" + quote), true
		}
	}
	return goex.UNKNOWN_PAIR, false
}
