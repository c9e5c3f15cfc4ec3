package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

// ContractSpecRepository resolves contract specifications. Rows with a user_id
// are per-user overrides of the shipped defaults; override resolution happens
// here, never in the calculation packages.
type ContractSpecRepository struct {
	db *gorm.DB
}

func NewContractSpecRepository() *ContractSpecRepository {
	logger.WithField("component", "ContractSpecRepository").
		Info("Creating new ContractSpecRepository with MainDB")

	return &ContractSpecRepository{
		db: database.MainDB,
	}
}

func (r *ContractSpecRepository) WithDB(db *gorm.DB) *ContractSpecRepository {
	return &ContractSpecRepository{db: db}
}

// ResolveForUser returns the specification for a symbol: the user's override
// when one exists, the system default otherwise. Returns (nil, nil) when the
// symbol has no specification at all.
func (r *ContractSpecRepository) ResolveForUser(
	ctx context.Context,
	userID uint,
	symbol string,
) (*model.ContractSpecification, error) {

	logger.WithFields(map[string]interface{}{
		"repo":    "ContractSpecRepository",
		"op":      "ResolveForUser",
		"user_id": userID,
		"symbol":  symbol,
	}).Debug("Resolving contract specification")

	var spec model.ContractSpecification

	err := r.db.WithContext(ctx).
		Where("symbol = ? AND user_id = ?", symbol, userID).
		First(&spec).Error

	if err == nil {
		return &spec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.WithFields(map[string]interface{}{
			"repo":   "ContractSpecRepository",
			"op":     "ResolveForUser",
			"symbol": symbol,
		}).WithError(err).Error("Failed to fetch user override")

		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("symbol = ? AND user_id IS NULL", symbol).
		First(&spec).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo":   "ContractSpecRepository",
				"op":     "ResolveForUser",
				"symbol": symbol,
			}).Info("No contract specification for symbol")

			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":   "ContractSpecRepository",
			"op":     "ResolveForUser",
			"symbol": symbol,
		}).WithError(err).Error("Failed to fetch default specification")

		return nil, err
	}

	return &spec, nil
}

// ListActive returns all active specifications visible to a user: system
// defaults plus the user's own overrides.
func (r *ContractSpecRepository) ListActive(
	ctx context.Context,
	userID uint,
) ([]model.ContractSpecification, error) {

	var specs []model.ContractSpecification

	err := r.db.WithContext(ctx).
		Where("is_active = ? AND (user_id IS NULL OR user_id = ?)", true, userID).
		Order("symbol ASC").
		Find(&specs).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "ContractSpecRepository",
			"op":      "ListActive",
			"user_id": userID,
		}).WithError(err).Error("Failed to list contract specifications")

		return nil, err
	}

	return specs, nil
}

// Upsert creates or updates a user override for a symbol.
func (r *ContractSpecRepository) Upsert(
	ctx context.Context,
	spec *model.ContractSpecification,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":   "ContractSpecRepository",
		"op":     "Upsert",
		"symbol": spec.Symbol,
	}).Debug("Upserting contract specification")

	if spec.ID != 0 {
		return r.db.WithContext(ctx).Save(spec).Error
	}

	var existing model.ContractSpecification
	query := r.db.WithContext(ctx).Where("symbol = ?", spec.Symbol)
	if spec.UserID != nil {
		query = query.Where("user_id = ?", *spec.UserID)
	} else {
		query = query.Where("user_id IS NULL")
	}

	err := query.First(&existing).Error
	if err == nil {
		spec.ID = existing.ID
		spec.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(spec).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.WithContext(ctx).Create(spec).Error
}
