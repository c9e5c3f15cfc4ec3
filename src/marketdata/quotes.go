package marketdata

// Quote retrieval for listed instruments (stocks, futures fronts).
// RESTY ONLY + INTERNAL RETRY

import (
	"context"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

// QuoteProvider supplies last prices for a set of symbols. Implementations
// must omit symbols they cannot quote instead of failing the whole batch;
// a missing symbol is normal, not an error.
type QuoteProvider interface {
	Quotes(ctx context.Context, symbols []string) (map[string]float64, error)
}

// StooqClient pulls delayed quotes from the stooq.com CSV endpoint.
type StooqClient struct {
	baseURL string
	http    *resty.Client
}

func NewStooqClient(config *Config) *StooqClient {
	if config == nil {
		config = GetConfig()
	}

	client := resty.New().
		SetBaseURL(config.StooqBaseURL).
		SetTimeout(config.HTTPTimeout).
		SetRetryCount(config.RetryAttempts).
		SetRetryWaitTime(config.RetryBaseWait)

	return &StooqClient{
		baseURL: config.StooqBaseURL,
		http:    client,
	}
}

// Quotes fetches the latest close for each symbol. Symbols the feed does not
// know ("N/D" rows) are omitted from the result map.
func (c *StooqClient) Quotes(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))
	if len(symbols) == 0 {
		return prices, nil
	}

	query := make([]string, 0, len(symbols))
	for _, s := range symbols {
		query = append(query, strings.ToLower(strings.TrimSpace(s)))
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("s", strings.Join(query, " ")).
		SetQueryParam("f", "sd2t2ohlcv").
		SetQueryParam("h", "").
		SetQueryParam("e", "csv").
		Get("/q/l/")

	if err != nil {
		logger.WithError(err).Error("[marketdata] stooq request failed")
		return nil, err
	}

	parsed, err := parseStooqCSV(resp.String())
	if err != nil {
		logger.WithError(err).Error("[marketdata] stooq response unparseable")
		return nil, err
	}

	for symbol, price := range parsed {
		prices[strings.ToUpper(symbol)] = price
	}

	logger.WithFields(map[string]interface{}{
		"requested": len(symbols),
		"quoted":    len(prices),
	}).Debug("[marketdata] stooq quotes fetched")

	return prices, nil
}

// parseStooqCSV extracts symbol -> close from the stooq light CSV format:
// Symbol,Date,Time,Open,High,Low,Close,Volume. Rows with a non-numeric close
// (the feed reports "N/D" for unknown symbols) are skipped.
func parseStooqCSV(body string) (map[string]float64, error) {
	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	prices := make(map[string]float64)
	for i, record := range records {
		if i == 0 || len(record) < 7 {
			// header or malformed row
			continue
		}
		closePrice, err := strconv.ParseFloat(record[6], 64)
		if err != nil {
			continue
		}
		prices[record[0]] = closePrice
	}
	return prices, nil
}
