package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

// JournalRepository handles read/write operations for journal entries.
type JournalRepository struct {
	db *gorm.DB
}

func NewJournalRepository() *JournalRepository {
	logger.WithField("component", "JournalRepository").
		Info("Creating new JournalRepository with MainDB")

	return &JournalRepository{
		db: database.MainDB,
	}
}

func (r *JournalRepository) WithDB(db *gorm.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) Create(
	ctx context.Context,
	entry *model.JournalEntry,
) error {

	err := r.db.WithContext(ctx).Create(entry).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "JournalRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create journal entry")

		return err
	}

	return nil
}

// FindByID returns (nil, nil) when the entry does not exist.
func (r *JournalRepository) FindByID(
	ctx context.Context,
	id uint,
) (*model.JournalEntry, error) {

	var entry model.JournalEntry

	err := r.db.WithContext(ctx).First(&entry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "JournalRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch journal entry")

		return nil, err
	}

	return &entry, nil
}

func (r *JournalRepository) ListByUser(
	ctx context.Context,
	userID uint,
	limit int,
	offset int,
) ([]model.JournalEntry, error) {

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var entries []model.JournalEntry
	if err := query.Find(&entries).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "JournalRepository",
			"op":      "ListByUser",
			"user_id": userID,
		}).WithError(err).Error("Failed to list journal entries")

		return nil, err
	}

	return entries, nil
}

func (r *JournalRepository) Update(
	ctx context.Context,
	entry *model.JournalEntry,
) error {

	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *JournalRepository) Delete(
	ctx context.Context,
	userID uint,
	id uint,
) error {

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.JournalEntry{}, id).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "JournalRepository",
			"op":   "Delete",
			"id":   id,
		}).WithError(err).Error("Failed to delete journal entry")
	}

	return err
}
