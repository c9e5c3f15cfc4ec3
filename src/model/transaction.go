package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeBuy        = "buy"
	TransactionTypeSell       = "sell"
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeFee        = "fee"
	TransactionTypeDividend   = "dividend"
)

// Transaction is one journal entry against cash or a position. Money columns
// use decimal so realized totals can be aggregated without float drift.
type Transaction struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	UserID     uint  `gorm:"index" json:"user_id"`
	PositionID *uint `gorm:"index" json:"position_id,omitempty"`

	Type      string `gorm:"size:20;not null" json:"type"`
	AssetType string `gorm:"size:20" json:"asset_type"`
	Symbol    string `gorm:"size:50" json:"symbol"`

	Quantity decimal.Decimal `gorm:"type:double precision;not null" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:double precision;not null" json:"price"`
	Fees     decimal.Decimal `gorm:"type:double precision;not null" json:"fees"`
	// Amount is the signed cash effect of the transaction in USD.
	Amount     decimal.Decimal `gorm:"type:double precision;not null" json:"amount"`
	RealizedPL decimal.Decimal `gorm:"type:double precision" json:"realized_pl"`

	// ImportBatchID groups rows created by a single broker import.
	ImportBatchID *string `gorm:"size:36;index" json:"import_batch_id,omitempty"`

	ExecutedAt time.Time `gorm:"not null;index" json:"executed_at"`
	Notes      string    `gorm:"size:1024" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
