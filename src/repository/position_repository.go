package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

// PositionRepository handles read/write operations for positions and their legs.
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new repository instance using the main read/write database.
func NewPositionRepository() *PositionRepository {
	logger.WithField("component", "PositionRepository").
		Info("Creating new PositionRepository with MainDB")

	return &PositionRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *PositionRepository) WithDB(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// PositionSearchOptions filters the position listing. Nil pointers mean
// "no filter".
type PositionSearchOptions struct {
	UserID    uint
	AssetType *string
	Status    *string
	Symbol    *string
	Limit     int
	Offset    int
}

// Create inserts a new position together with its legs.
func (r *PositionRepository) Create(
	ctx context.Context,
	position *model.Position,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":       "PositionRepository",
		"op":         "Create",
		"symbol":     position.Symbol,
		"asset_type": position.AssetType,
		"side":       position.Side,
		"qty":        position.Quantity,
	}).Debug("Creating new position")

	err := r.db.WithContext(ctx).Create(position).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create position")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "PositionRepository",
		"op":          "Create",
		"position_id": position.ID,
	}).Info("Position created successfully")

	return nil
}

// FindByID fetches a single position with its legs by primary ID.
// Returns (nil, nil) if the position is not found.
func (r *PositionRepository) FindByID(
	ctx context.Context,
	id uint,
) (*model.Position, error) {

	logger.WithFields(map[string]interface{}{
		"repo": "PositionRepository",
		"op":   "FindByID",
		"id":   id,
	}).Debug("Fetching position by ID")

	var position model.Position

	err := r.db.WithContext(ctx).
		Preload("Legs").
		First(&position, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo": "PositionRepository",
				"op":   "FindByID",
				"id":   id,
			}).Info("Position not found")

			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch position by ID")

		return nil, err
	}

	return &position, nil
}

// Search lists positions for a user, newest first, with optional filters and
// pagination.
func (r *PositionRepository) Search(
	ctx context.Context,
	options PositionSearchOptions,
) ([]model.Position, error) {

	logger.WithFields(map[string]interface{}{
		"repo":    "PositionRepository",
		"op":      "Search",
		"user_id": options.UserID,
	}).Debug("Searching positions")

	query := r.db.WithContext(ctx).
		Preload("Legs").
		Where("user_id = ?", options.UserID)

	if options.AssetType != nil {
		query = query.Where("asset_type = ?", *options.AssetType)
	}
	if options.Status != nil {
		query = query.Where("status = ?", *options.Status)
	}
	if options.Symbol != nil {
		query = query.Where("symbol = ?", *options.Symbol)
	}

	query = query.Order("opened_at DESC, id DESC")

	if options.Limit > 0 {
		query = query.Limit(options.Limit)
	}
	if options.Offset > 0 {
		query = query.Offset(options.Offset)
	}

	var positions []model.Position
	if err := query.Find(&positions).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "PositionRepository",
			"op":      "Search",
			"user_id": options.UserID,
		}).WithError(err).Error("Failed to search positions")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "PositionRepository",
		"op":          "Search",
		"user_id":     options.UserID,
		"rows_return": len(positions),
	}).Info("Positions fetched")

	return positions, nil
}

// OpenSymbols returns the distinct symbols of all currently open positions,
// across users. The quote refresher uses this as its work list.
func (r *PositionRepository) OpenSymbols(
	ctx context.Context,
) ([]string, error) {

	var symbols []string

	err := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Distinct("symbol").
		Where("status = ?", model.PositionStatusOpen).
		Order("symbol ASC").
		Pluck("symbol", &symbols).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "OpenSymbols",
		}).WithError(err).Error("Failed to list open symbols")

		return nil, err
	}

	return symbols, nil
}

// ApplyFill mutates a position after a partial buy or sell: it adjusts the
// open quantity, average opening price and total cost basis, and closes the
// position when the quantity returns to zero. Positions are closed, never
// deleted.
func (r *PositionRepository) ApplyFill(
	ctx context.Context,
	id uint,
	quantity float64,
	averageOpeningPrice float64,
	totalCostBasis float64,
) error {

	logger.WithFields(map[string]interface{}{
		"repo": "PositionRepository",
		"op":   "ApplyFill",
		"id":   id,
		"qty":  quantity,
	}).Debug("Applying fill to position")

	updates := map[string]interface{}{
		"quantity":              quantity,
		"average_opening_price": averageOpeningPrice,
		"total_cost_basis":      totalCostBasis,
	}
	if quantity == 0 {
		now := time.Now()
		updates["status"] = model.PositionStatusClosed
		updates["closed_at"] = &now
	}

	err := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("id = ?", id).
		Updates(updates).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "ApplyFill",
			"id":   id,
		}).WithError(err).Error("Failed to apply fill")

		return err
	}

	return nil
}

// Close marks a position as closed without touching its quantities.
func (r *PositionRepository) Close(
	ctx context.Context,
	id uint,
) error {

	now := time.Now()

	err := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":    model.PositionStatusClosed,
			"closed_at": &now,
		}).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "Close",
			"id":   id,
		}).WithError(err).Error("Failed to close position")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo": "PositionRepository",
		"op":   "Close",
		"id":   id,
	}).Info("Position closed")

	return nil
}
