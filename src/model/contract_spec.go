package model

import "time"

// ContractSpecification holds the static economics of one futures contract
// symbol. Rows with a nil UserID are system defaults; rows with a UserID are
// per-user overrides. The calculation packages treat these as read-only.
type ContractSpecification struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID *uint `gorm:"index:idx_contract_spec_user_symbol,unique" json:"user_id,omitempty"`

	Symbol   string `gorm:"size:20;not null;index:idx_contract_spec_user_symbol,unique" json:"symbol"`
	Name     string `gorm:"size:100" json:"name"`
	Exchange string `gorm:"size:50" json:"exchange"`

	Multiplier float64 `gorm:"not null" json:"multiplier"`
	TickSize   float64 `gorm:"not null" json:"tick_size"`
	TickValue  float64 `gorm:"not null" json:"tick_value"`

	InitialMargin     *float64 `json:"initial_margin,omitempty"`
	MaintenanceMargin *float64 `json:"maintenance_margin,omitempty"`

	// ContractMonths is the set of valid month letter codes, e.g. "HMUZ".
	ContractMonths  string  `gorm:"size:12" json:"contract_months"`
	FeesPerContract float64 `json:"fees_per_contract"`
	IsActive        bool    `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ContractSpecification) TableName() string {
	return "contract_specifications"
}
