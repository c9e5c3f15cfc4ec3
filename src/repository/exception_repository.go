package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

// ExceptionRepository persists system errors for auditing and monitoring.
type ExceptionRepository struct {
	db *gorm.DB
}

func NewExceptionRepository() *ExceptionRepository {
	return &ExceptionRepository{db: database.MainDB}
}

func (r *ExceptionRepository) WithDB(db *gorm.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

func (r *ExceptionRepository) Create(
	ctx context.Context,
	exc *model.Exception,
) error {

	err := r.db.WithContext(ctx).Create(exc).Error
	if err != nil {
		// Last resort: the error about the error only goes to the log.
		logger.WithFields(map[string]interface{}{
			"repo":    "ExceptionRepository",
			"op":      "Create",
			"service": exc.Service,
		}).WithError(err).Error("Failed to persist exception")
	}

	return err
}

func (r *ExceptionRepository) ListRecent(
	ctx context.Context,
	limit int,
) ([]model.Exception, error) {

	if limit <= 0 {
		limit = 50
	}

	var rows []model.Exception
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error

	if err != nil {
		return nil, err
	}
	return rows, nil
}
