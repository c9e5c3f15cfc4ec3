package model

import "time"

const (
	AssetTypeStock   = "stock"
	AssetTypeOption  = "option"
	AssetTypeCrypto  = "crypto"
	AssetTypeFutures = "futures"
)

const (
	SideLong  = "long"
	SideShort = "short"
)

const (
	PositionStatusOpen   = "open"
	PositionStatusClosed = "closed"
)

const (
	OptionTypeCall = "call"
	OptionTypePut  = "put"
)

// Position is one holding in a single asset class. AssetType decides which of
// the optional field groups below is meaningful; the snapshot package enforces
// that at read time.
type Position struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UserID    uint    `gorm:"index" json:"user_id"`
	AssetType string  `gorm:"size:20;not null;index" json:"asset_type"`
	Symbol    string  `gorm:"size:50;not null" json:"symbol"`
	Side      string  `gorm:"size:10;not null" json:"side"`
	Quantity  float64 `json:"quantity"`

	AverageOpeningPrice float64  `json:"average_opening_price"`
	TotalCostBasis      float64  `json:"total_cost_basis"`
	UnrealizedPL        *float64 `json:"unrealized_pl,omitempty"`

	Status string `gorm:"size:50;not null;default:open" json:"status"`

	// Option fields. QuantityMultiplier also applies to multi-leg strategies.
	OptionType         *string  `gorm:"size:10" json:"option_type,omitempty"`
	StrikePrice        *float64 `json:"strike_price,omitempty"`
	ExpirationDate     *string  `gorm:"size:10" json:"expiration_date,omitempty"`
	QuantityMultiplier float64  `gorm:"default:1" json:"quantity_multiplier"`
	StrategyName       *string  `gorm:"size:100" json:"strategy_name,omitempty"`

	// Futures fields. Tick and margin values override the contract
	// specification when set on the position itself.
	ContractMonth     *string  `gorm:"size:10" json:"contract_month,omitempty"`
	TickSize          *float64 `json:"tick_size,omitempty"`
	TickValue         *float64 `json:"tick_value,omitempty"`
	MarginRequirement *float64 `json:"margin_requirement,omitempty"`

	OpenedAt  time.Time  `json:"opened_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// One-to-many relation: legs of a multi-leg option strategy.
	Legs []Leg `gorm:"foreignKey:PositionID" json:"legs,omitempty"`
}

func (Position) TableName() string {
	return "positions"
}

// IsMultiLeg reports whether the position is a multi-leg option strategy.
func (p Position) IsMultiLeg() bool {
	return len(p.Legs) > 0
}

// Leg is one option contract inside a multi-leg strategy. Legs are owned by
// their parent position and are never shared.
type Leg struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	PositionID     uint    `gorm:"not null;index" json:"position_id"`
	OptionType     string  `gorm:"size:10;not null" json:"option_type"`
	Direction      string  `gorm:"size:10;not null" json:"direction"`
	Quantity       float64 `gorm:"not null" json:"quantity"`
	StrikePrice    float64 `gorm:"not null" json:"strike_price"`
	ExpirationDate string  `gorm:"size:10" json:"expiration_date"`
	EntryPrice     float64 `gorm:"not null" json:"entry_price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Leg) TableName() string {
	return "position_legs"
}
