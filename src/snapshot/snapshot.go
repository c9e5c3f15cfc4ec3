package snapshot

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"tradejournal/src/contracts"
	"tradejournal/src/model"
	"tradejournal/src/valuation"
)

// Domain errors for malformed stored positions. These indicate a previously
// accepted invariant violation and must be surfaced, never masked.
var (
	ErrUnknownAssetType     = errors.New("unknown asset type")
	ErrMissingOptionFields  = errors.New("option position missing type, strike or expiration")
	ErrMissingLegs          = errors.New("multi-leg position has no legs")
	ErrMissingContractMonth = errors.New("futures position has no contract month or expiration")
)

// Snapshot is the derived per-position view the UI renders. It is recomputed
// from the stored position and the current price on every request and is
// never persisted.
type Snapshot struct {
	PositionID uint    `json:"position_id"`
	AssetType  string  `json:"asset_type"`
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Quantity   float64 `json:"quantity"`
	Status     string  `json:"status"`

	CurrentPrice        float64 `json:"current_price"`
	QuoteAvailable      bool    `json:"quote_available"`
	CostBasis           float64 `json:"cost_basis"`
	MarketValue         float64 `json:"market_value"`
	UnrealizedPL        float64 `json:"unrealized_pl"`
	UnrealizedPLPercent float64 `json:"unrealized_pl_percent"`

	// Option fields. Greeks are intentionally never computed here; they stay
	// nil unless some upstream feed supplies them.
	OptionSymbol      string   `json:"option_symbol,omitempty"`
	OptionType        string   `json:"option_type,omitempty"`
	StrikePrice       *float64 `json:"strike_price,omitempty"`
	ExpirationDate    string   `json:"expiration_date,omitempty"`
	Delta             *float64 `json:"delta,omitempty"`
	Gamma             *float64 `json:"gamma,omitempty"`
	Theta             *float64 `json:"theta,omitempty"`
	Vega              *float64 `json:"vega,omitempty"`
	ImpliedVolatility *float64 `json:"implied_volatility,omitempty"`

	// Multi-leg strategy fields.
	MultiLeg     bool   `json:"multi_leg"`
	LegCount     int    `json:"leg_count,omitempty"`
	StrategyName string `json:"strategy_name,omitempty"`

	// Futures fields.
	ContractMonth     string   `json:"contract_month,omitempty"`
	ContractMonthName string   `json:"contract_month_name,omitempty"`
	TickSize          *float64 `json:"tick_size,omitempty"`
	TickValue         *float64 `json:"tick_value,omitempty"`
	MarginRequirement *float64 `json:"margin_requirement,omitempty"`
	NotionalValue     *float64 `json:"notional_value,omitempty"`
}

// Build produces the asset-class specific snapshot for one stored position.
// livePrice is the current quote, nil when market data is unavailable; spec is
// the resolved contract specification for futures, nil otherwise. Inputs are
// never mutated.
func Build(p model.Position, livePrice *float64, spec *model.ContractSpecification) (*Snapshot, error) {
	switch p.AssetType {
	case model.AssetTypeStock:
		return buildEquityStyle(p, livePrice), nil
	case model.AssetTypeCrypto:
		return buildEquityStyle(p, livePrice), nil
	case model.AssetTypeOption:
		return buildOption(p, livePrice)
	case model.AssetTypeFutures:
		return buildFutures(p, livePrice, spec)
	default:
		return nil, ErrUnknownAssetType
	}
}

// currentPrice applies the degraded-data policy: with no live quote the
// position is priced at its average opening price, which pins unrealized P&L
// at zero instead of fabricating a figure.
func currentPrice(p model.Position, livePrice *float64) (float64, bool) {
	if livePrice != nil {
		return *livePrice, true
	}
	return p.AverageOpeningPrice, false
}

func newSnapshot(p model.Position) *Snapshot {
	return &Snapshot{
		PositionID: p.ID,
		AssetType:  p.AssetType,
		Symbol:     p.Symbol,
		Side:       p.Side,
		Quantity:   p.Quantity,
		Status:     p.Status,
	}
}

// applyGeneralRule fills the valuation figures shared by every single-leg
// asset class: cost basis is the absolute stored basis, market value is
// quantity x multiplier x price, and the P&L sign follows the side.
func (s *Snapshot) applyGeneralRule(p model.Position, price float64, quoted bool, multiplier float64) {
	s.CurrentPrice = price
	s.QuoteAvailable = quoted
	s.CostBasis = math.Abs(p.TotalCostBasis)
	s.MarketValue = p.Quantity * multiplier * price

	if !quoted {
		return
	}

	if p.Side == model.SideShort {
		s.UnrealizedPL = s.CostBasis - s.MarketValue
	} else {
		s.UnrealizedPL = s.MarketValue - s.CostBasis
	}
	if s.CostBasis > 0 {
		s.UnrealizedPLPercent = s.UnrealizedPL / s.CostBasis * 100
	}
}

func buildEquityStyle(p model.Position, livePrice *float64) *Snapshot {
	s := newSnapshot(p)
	price, quoted := currentPrice(p, livePrice)
	s.applyGeneralRule(p, price, quoted, 1)
	return s
}

func buildOption(p model.Position, livePrice *float64) (*Snapshot, error) {
	if p.IsMultiLeg() {
		return buildStrategy(p, livePrice)
	}

	if p.OptionType == nil || p.StrikePrice == nil || p.ExpirationDate == nil {
		return nil, ErrMissingOptionFields
	}

	s := newSnapshot(p)
	price, quoted := currentPrice(p, livePrice)
	s.applyGeneralRule(p, price, quoted, quantityMultiplier(p))

	strike := *p.StrikePrice
	s.OptionType = *p.OptionType
	s.StrikePrice = &strike
	s.ExpirationDate = *p.ExpirationDate
	s.OptionSymbol = OptionSymbol(p.Symbol, *p.ExpirationDate, *p.OptionType, strike)
	return s, nil
}

// buildStrategy prices a multi-leg option strategy as a single unit: each leg
// contributes its signed entry cost (long legs are debits, short legs are
// credits), then the strategy's own quoted price drives the P&L. Legs are not
// repriced individually once the strategy is open.
func buildStrategy(p model.Position, livePrice *float64) (*Snapshot, error) {
	if len(p.Legs) == 0 {
		return nil, ErrMissingLegs
	}

	s := newSnapshot(p)
	s.MultiLeg = true
	s.LegCount = len(p.Legs)
	if p.StrategyName != nil {
		s.StrategyName = *p.StrategyName
	}

	qm := quantityMultiplier(p)
	costBasis := 0.0
	for _, leg := range p.Legs {
		legCost := leg.EntryPrice * leg.Quantity
		if leg.Direction == model.SideShort {
			legCost = -legCost
		}
		costBasis += legCost
	}
	costBasis *= qm

	price, quoted := currentPrice(p, livePrice)
	currentValue := price * qm

	s.CurrentPrice = price
	s.QuoteAvailable = quoted
	// Net credit strategies carry a negative cost basis; that is valid data,
	// not an error.
	s.CostBasis = costBasis
	s.MarketValue = currentValue

	if quoted {
		if p.Side == model.SideShort {
			s.UnrealizedPL = costBasis - currentValue
		} else {
			s.UnrealizedPL = currentValue - costBasis
		}
		if costBasis != 0 {
			s.UnrealizedPLPercent = s.UnrealizedPL / math.Abs(costBasis) * 100
		}
	}
	return s, nil
}

func buildFutures(p model.Position, livePrice *float64, spec *model.ContractSpecification) (*Snapshot, error) {
	s := newSnapshot(p)

	monthLabel := contractMonthLabel(p)
	expiration := ""
	if p.ExpirationDate != nil {
		expiration = *p.ExpirationDate
	} else if monthLabel != "" {
		root := contractRoot(p.Symbol)
		if resolved, ok := contracts.ExpirationDate(monthLabel, root); ok {
			expiration = resolved
		}
	}
	if expiration == "" {
		return nil, ErrMissingContractMonth
	}
	s.ExpirationDate = expiration
	s.ContractMonth = monthLabel
	if month, _, ok := contracts.MonthFromLabel(monthLabel); ok {
		s.ContractMonthName = month.String()
	}

	multiplier := 1.0
	if spec != nil && spec.Multiplier > 0 {
		multiplier = spec.Multiplier
	}

	price, quoted := currentPrice(p, livePrice)
	s.applyGeneralRule(p, price, quoted, multiplier)

	notional := valuation.FuturesValue(price, p.Quantity, multiplier)
	s.NotionalValue = &notional

	s.TickSize = firstFloat(p.TickSize, specTickSize(spec))
	s.TickValue = firstFloat(p.TickValue, specTickValue(spec))

	if p.MarginRequirement != nil {
		margin := *p.MarginRequirement
		s.MarginRequirement = &margin
	} else if spec != nil && spec.InitialMargin != nil {
		margin := valuation.MarginRequirement(p.Quantity, *spec.InitialMargin)
		s.MarginRequirement = &margin
	}

	return s, nil
}

// contractMonthLabel prefers the stored label and falls back to the parsed
// symbol, e.g. ESH25 -> H25.
func contractMonthLabel(p model.Position) string {
	if p.ContractMonth != nil && *p.ContractMonth != "" {
		return *p.ContractMonth
	}
	if parsed, ok := contracts.ParseContractSymbol(p.Symbol); ok {
		return string(parsed.Code) + strconv.Itoa(parsed.Year%100)
	}
	return ""
}

func contractRoot(symbol string) string {
	if parsed, ok := contracts.ParseContractSymbol(symbol); ok {
		return parsed.Base
	}
	return symbol
}

// OptionSymbol derives the canonical option identifier from its parts, e.g.
// "AAPL 2025-03-21 CALL 180".
func OptionSymbol(underlying, expiration, optionType string, strike float64) string {
	return strings.ToUpper(strings.TrimSpace(underlying)) + " " +
		expiration + " " +
		strings.ToUpper(optionType) + " " +
		strconv.FormatFloat(strike, 'f', -1, 64)
}

func quantityMultiplier(p model.Position) float64 {
	if p.QuantityMultiplier > 0 {
		return p.QuantityMultiplier
	}
	return 1
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			out := *v
			return &out
		}
	}
	return nil
}

func specTickSize(spec *model.ContractSpecification) *float64 {
	if spec == nil || spec.TickSize <= 0 {
		return nil
	}
	v := spec.TickSize
	return &v
}

func specTickValue(spec *model.ContractSpecification) *float64 {
	if spec == nil || spec.TickValue <= 0 {
		return nil
	}
	v := spec.TickValue
	return &v
}
