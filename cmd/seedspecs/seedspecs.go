package seedspecs

import (
	"tradejournal/src/database/migrations"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Seeder loads the shipped contract specification defaults into the database.
// Safe to run repeatedly: existing rows are left alone.
type Seeder struct {
	Log *logger.Entry
	DB  *gorm.DB
}

func (s *Seeder) Start() error {
	if err := migrations.SeedDefaultContractSpecs(s.DB); err != nil {
		s.Log.WithError(err).Error("failed to seed contract specifications")
		return err
	}

	s.Log.Info("contract specification defaults seeded")
	return nil
}
