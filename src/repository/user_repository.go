package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository() *GormUserRepository {
	logger.WithField("component", "GormUserRepository").
		Info("Creating new GormUserRepository with MainDB")

	return &GormUserRepository{
		db: database.MainDB,
	}
}

func (r *GormUserRepository) WithDB(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetUserByUserName(
	ctx context.Context,
	userName string,
) (*model.User, error) {

	var u model.User
	err := r.db.WithContext(ctx).
		Where("user_name = ? ", userName).
		First(&u).Error

	if err != nil {
		return nil, err
	}

	return &u, nil
}

// GetUserByAPIToken resolves an API token to its user.
// Returns (nil, nil) when the token matches nobody.
func (r *GormUserRepository) GetUserByAPIToken(
	ctx context.Context,
	token string,
) (*model.User, error) {

	var u model.User
	err := r.db.WithContext(ctx).
		Where("api_token = ?", token).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithField("repo", "GormUserRepository").
			WithError(err).Error("Failed to fetch user by API token")

		return nil, err
	}

	return &u, nil
}

// Save persists profile or credential changes.
func (r *GormUserRepository) Save(
	ctx context.Context,
	u *model.User,
) error {

	err := r.db.WithContext(ctx).Save(u).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "GormUserRepository",
			"op":   "Save",
			"id":   u.ID,
		}).WithError(err).Error("Failed to save user")
	}

	return err
}
