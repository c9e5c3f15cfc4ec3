package valuation

import "math"

// ContractTerms is the subset of a contract specification the calculator
// needs. Callers pass it by value; the calculator never mutates it.
type ContractTerms struct {
	Multiplier      float64
	TickSize        float64
	TickValue       float64
	MarginPerLot    *float64
	FeesPerContract float64
}

// Calculation is the derived pre-trade view of one prospective trade.
// Leverage is nil when no margin is configured; never divide by a missing
// or zero margin.
type Calculation struct {
	NotionalValue  float64  `json:"notional_value"`
	MarginRequired *float64 `json:"margin_required,omitempty"`
	TotalFees      float64  `json:"total_fees"`
	Leverage       *float64 `json:"leverage,omitempty"`
}

// FuturesValue is the notional value of a futures position:
// price x quantity x multiplier. The sign follows quantity; direction is the
// caller's responsibility.
func FuturesValue(price, quantity, multiplier float64) float64 {
	return price * quantity * multiplier
}

// MarginRequirement is |quantity| x marginPerContract. Margin is a magnitude,
// never a signed exposure.
func MarginRequirement(quantity, marginPerContract float64) float64 {
	return math.Abs(quantity) * marginPerContract
}

// TickPL is the canonical profit and loss for tick-quoted instruments:
// ((exit - entry) / tickSize) x tickValue x quantity. Quantity sign encodes
// direction; a positive quantity benefits from a price increase.
func TickPL(entryPrice, exitPrice, quantity, tickSize, tickValue float64) float64 {
	return ((exitPrice - entryPrice) / tickSize) * tickValue * quantity
}

// Calculate produces the aggregate pre-trade view used by transaction entry
// previews. All values are unrounded USD floats; formatting belongs to the
// presentation layer.
func Calculate(terms ContractTerms, price, quantity float64) Calculation {
	calc := Calculation{
		NotionalValue: FuturesValue(price, quantity, terms.Multiplier),
		TotalFees:     math.Abs(quantity) * terms.FeesPerContract,
	}

	if terms.MarginPerLot == nil || *terms.MarginPerLot <= 0 {
		return calc
	}

	margin := MarginRequirement(quantity, *terms.MarginPerLot)
	calc.MarginRequired = &margin

	if margin > 0 {
		leverage := math.Abs(calc.NotionalValue) / margin
		calc.Leverage = &leverage
	}
	return calc
}
