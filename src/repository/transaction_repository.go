package repository

import (
	"context"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

// TransactionRepository handles read/write operations for journal transactions.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository() *TransactionRepository {
	logger.WithField("component", "TransactionRepository").
		Info("Creating new TransactionRepository with MainDB")

	return &TransactionRepository{
		db: database.MainDB,
	}
}

func (r *TransactionRepository) WithDB(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a single transaction.
func (r *TransactionRepository) Create(
	ctx context.Context,
	tx *model.Transaction,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":   "TransactionRepository",
		"op":     "Create",
		"type":   tx.Type,
		"symbol": tx.Symbol,
	}).Debug("Creating transaction")

	err := r.db.WithContext(ctx).Create(tx).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TransactionRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create transaction")

		return err
	}

	return nil
}

// CreateBatch inserts all rows of a broker import inside one database
// transaction; either the whole batch lands or none of it does.
func (r *TransactionRepository) CreateBatch(
	ctx context.Context,
	rows []model.Transaction,
) error {

	if len(rows) == 0 {
		return nil
	}

	logger.WithFields(map[string]interface{}{
		"repo": "TransactionRepository",
		"op":   "CreateBatch",
		"rows": len(rows),
	}).Info("Creating transaction batch")

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := tx.Create(&rows[i]).Error; err != nil {
				logger.WithError(err).Error("Failed to create transaction inside batch")
				return err
			}
		}
		return nil
	})
}

// ListByPosition returns all transactions booked against one position,
// oldest first.
func (r *TransactionRepository) ListByPosition(
	ctx context.Context,
	userID uint,
	positionID uint,
) ([]model.Transaction, error) {

	var rows []model.Transaction

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND position_id = ?", userID, positionID).
		Order("executed_at ASC, id ASC").
		Find(&rows).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "TransactionRepository",
			"op":          "ListByPosition",
			"position_id": positionID,
		}).WithError(err).Error("Failed to list transactions")

		return nil, err
	}

	return rows, nil
}

// SumRealizedPL aggregates the realized P&L of a user's transactions with
// decimal arithmetic so repeated cents never drift.
func (r *TransactionRepository) SumRealizedPL(
	ctx context.Context,
	userID uint,
) (decimal.Decimal, error) {

	var rows []model.Transaction

	err := r.db.WithContext(ctx).
		Select("realized_pl").
		Where("user_id = ?", userID).
		Find(&rows).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "TransactionRepository",
			"op":      "SumRealizedPL",
			"user_id": userID,
		}).WithError(err).Error("Failed to sum realized P&L")

		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.RealizedPL)
	}
	return total, nil
}
