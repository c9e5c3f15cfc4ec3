package model

import "time"

// Quote is the cached last known price for a symbol. The snapshot layer
// tolerates missing rows; an absent quote never fabricates a P&L figure.
type Quote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"size:50;not null;uniqueIndex" json:"symbol"`
	Price     float64   `gorm:"not null" json:"price"`
	Source    string    `gorm:"size:50" json:"source"`
	FetchedAt time.Time `gorm:"not null" json:"fetched_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quote) TableName() string {
	return "quotes"
}
