package repository

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

// QuoteRepository stores the latest cached price per symbol.
type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository() *QuoteRepository {
	logger.WithField("component", "QuoteRepository").
		Info("Creating new QuoteRepository with MainDB")

	return &QuoteRepository{
		db: database.MainDB,
	}
}

func (r *QuoteRepository) WithDB(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Upsert writes the latest price for a symbol, replacing any previous row.
func (r *QuoteRepository) Upsert(
	ctx context.Context,
	symbol string,
	price float64,
	source string,
) error {

	quote := model.Quote{
		Symbol:    symbol,
		Price:     price,
		Source:    source,
		FetchedAt: time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "source", "fetched_at", "updated_at"}),
		}).
		Create(&quote).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "QuoteRepository",
			"op":     "Upsert",
			"symbol": symbol,
		}).WithError(err).Error("Failed to upsert quote")

		return err
	}

	return nil
}

// GetMap returns the cached prices for the given symbols. Symbols without a
// cached quote are simply absent from the map; callers must tolerate that.
func (r *QuoteRepository) GetMap(
	ctx context.Context,
	symbols []string,
) (map[string]float64, error) {

	prices := make(map[string]float64, len(symbols))
	if len(symbols) == 0 {
		return prices, nil
	}

	var quotes []model.Quote
	err := r.db.WithContext(ctx).
		Where("symbol IN ?", symbols).
		Find(&quotes).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "QuoteRepository",
			"op":   "GetMap",
		}).WithError(err).Error("Failed to fetch quotes")

		return nil, err
	}

	for _, q := range quotes {
		prices[q.Symbol] = q.Price
	}
	return prices, nil
}
