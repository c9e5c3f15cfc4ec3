package migrations

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradejournal/src/model"
)

func f(v float64) *float64 { return &v }

// defaultContractSpecs are the system-wide futures contract specifications
// shipped with the application. Users can override any of them per account.
var defaultContractSpecs = []model.ContractSpecification{
	{Symbol: "ES", Name: "E-mini S&P 500", Exchange: "CME", Multiplier: 50, TickSize: 0.25, TickValue: 12.50, InitialMargin: f(13200), MaintenanceMargin: f(12000), ContractMonths: "HMUZ", FeesPerContract: 2.50, IsActive: true},
	{Symbol: "NQ", Name: "E-mini Nasdaq-100", Exchange: "CME", Multiplier: 20, TickSize: 0.25, TickValue: 5.00, InitialMargin: f(17600), MaintenanceMargin: f(16000), ContractMonths: "HMUZ", FeesPerContract: 2.50, IsActive: true},
	{Symbol: "YM", Name: "E-mini Dow", Exchange: "CBOT", Multiplier: 5, TickSize: 1.00, TickValue: 5.00, InitialMargin: f(8800), MaintenanceMargin: f(8000), ContractMonths: "HMUZ", FeesPerContract: 2.50, IsActive: true},
	{Symbol: "RTY", Name: "E-mini Russell 2000", Exchange: "CME", Multiplier: 50, TickSize: 0.10, TickValue: 5.00, InitialMargin: f(7150), MaintenanceMargin: f(6500), ContractMonths: "HMUZ", FeesPerContract: 2.50, IsActive: true},
	{Symbol: "MES", Name: "Micro E-mini S&P 500", Exchange: "CME", Multiplier: 5, TickSize: 0.25, TickValue: 1.25, InitialMargin: f(1320), MaintenanceMargin: f(1200), ContractMonths: "HMUZ", FeesPerContract: 0.75, IsActive: true},
	{Symbol: "MNQ", Name: "Micro E-mini Nasdaq-100", Exchange: "CME", Multiplier: 2, TickSize: 0.25, TickValue: 0.50, InitialMargin: f(1760), MaintenanceMargin: f(1600), ContractMonths: "HMUZ", FeesPerContract: 0.75, IsActive: true},
	{Symbol: "MYM", Name: "Micro E-mini Dow", Exchange: "CBOT", Multiplier: 0.5, TickSize: 1.00, TickValue: 0.50, InitialMargin: f(880), MaintenanceMargin: f(800), ContractMonths: "HMUZ", FeesPerContract: 0.75, IsActive: true},
	{Symbol: "M2K", Name: "Micro E-mini Russell 2000", Exchange: "CME", Multiplier: 5, TickSize: 0.10, TickValue: 0.50, InitialMargin: f(715), MaintenanceMargin: f(650), ContractMonths: "HMUZ", FeesPerContract: 0.75, IsActive: true},
	{Symbol: "CL", Name: "Crude Oil", Exchange: "NYMEX", Multiplier: 1000, TickSize: 0.01, TickValue: 10.00, InitialMargin: f(6160), MaintenanceMargin: f(5600), ContractMonths: "FGHJKMNQUVXZ", FeesPerContract: 2.50, IsActive: true},
	{Symbol: "GC", Name: "Gold", Exchange: "COMEX", Multiplier: 100, TickSize: 0.10, TickValue: 10.00, InitialMargin: f(11000), MaintenanceMargin: f(10000), ContractMonths: "GJMQVZ", FeesPerContract: 2.50, IsActive: true},
}

// SeedDefaultContractSpecs inserts the shipped specifications, leaving any
// user overrides (rows with a user_id) untouched.
func SeedDefaultContractSpecs(db *gorm.DB) error {
	for _, spec := range defaultContractSpecs {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&spec).Error
		if err != nil {
			return err
		}
	}
	return nil
}
