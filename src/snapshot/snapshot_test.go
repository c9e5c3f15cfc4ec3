package snapshot

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"tradejournal/src/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ptr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func TestBuildStock(t *testing.T) {
	p := model.Position{
		ID:                  1,
		AssetType:           model.AssetTypeStock,
		Symbol:              "AAPL",
		Side:                model.SideLong,
		Quantity:            10,
		AverageOpeningPrice: 150,
		TotalCostBasis:      1500,
		Status:              model.PositionStatusOpen,
	}

	t.Run("long with live quote", func(t *testing.T) {
		s, err := Build(p, ptr(160.0), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !almostEqual(s.MarketValue, 1600) {
			t.Fatalf("market value mismatch. got=%v", s.MarketValue)
		}
		if !almostEqual(s.UnrealizedPL, 100) {
			t.Fatalf("unrealized P&L mismatch. got=%v", s.UnrealizedPL)
		}
		if !almostEqual(s.UnrealizedPLPercent, 100.0/1500*100) {
			t.Fatalf("P&L percent mismatch. got=%v", s.UnrealizedPLPercent)
		}
	})

	t.Run("short side inverts P&L", func(t *testing.T) {
		short := p
		short.Side = model.SideShort
		s, err := Build(short, ptr(160.0), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !almostEqual(s.UnrealizedPL, -100) {
			t.Fatalf("short P&L mismatch. got=%v", s.UnrealizedPL)
		}
	})

	t.Run("no quote pins P&L at zero", func(t *testing.T) {
		s, err := Build(p, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.CurrentPrice != p.AverageOpeningPrice {
			t.Fatalf("expected fallback to average opening price, got %v", s.CurrentPrice)
		}
		if s.UnrealizedPL != 0 || s.UnrealizedPLPercent != 0 {
			t.Fatalf("missing quote must never fabricate P&L. got pl=%v pct=%v", s.UnrealizedPL, s.UnrealizedPLPercent)
		}
		if s.QuoteAvailable {
			t.Fatalf("quote availability flag should be false")
		}
	})

	t.Run("zero cost basis guards percent", func(t *testing.T) {
		free := p
		free.TotalCostBasis = 0
		s, err := Build(free, ptr(160.0), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.UnrealizedPLPercent != 0 {
			t.Fatalf("percent must be 0 when cost basis is 0, got %v", s.UnrealizedPLPercent)
		}
	})
}

func TestBuildCryptoNoQuote(t *testing.T) {
	p := model.Position{
		AssetType:           model.AssetTypeCrypto,
		Symbol:              "BTCUSDT",
		Side:                model.SideLong,
		Quantity:            0.5,
		AverageOpeningPrice: 60000,
		TotalCostBasis:      30000,
	}
	s, err := Build(p, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CurrentPrice != 60000 || s.UnrealizedPL != 0 {
		t.Fatalf("crypto fallback mismatch. price=%v pl=%v", s.CurrentPrice, s.UnrealizedPL)
	}
}

func TestBuildOption(t *testing.T) {
	p := model.Position{
		AssetType:           model.AssetTypeOption,
		Symbol:              "AAPL",
		Side:                model.SideLong,
		Quantity:            2,
		AverageOpeningPrice: 3.50,
		TotalCostBasis:      700,
		QuantityMultiplier:  100,
		OptionType:          strPtr(model.OptionTypeCall),
		StrikePrice:         ptr(180.0),
		ExpirationDate:      strPtr("2025-03-21"),
	}

	t.Run("single leg call", func(t *testing.T) {
		s, err := Build(p, ptr(4.25), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !almostEqual(s.MarketValue, 2*100*4.25) {
			t.Fatalf("market value mismatch. got=%v", s.MarketValue)
		}
		if !almostEqual(s.UnrealizedPL, 850-700) {
			t.Fatalf("P&L mismatch. got=%v", s.UnrealizedPL)
		}
		if s.OptionSymbol != "AAPL 2025-03-21 CALL 180" {
			t.Fatalf("option symbol mismatch. got=%q", s.OptionSymbol)
		}
		if s.Delta != nil || s.Gamma != nil || s.Theta != nil || s.Vega != nil || s.ImpliedVolatility != nil {
			t.Fatalf("greeks must never be fabricated")
		}
	})

	t.Run("missing strike is a domain error", func(t *testing.T) {
		broken := p
		broken.StrikePrice = nil
		if _, err := Build(broken, ptr(4.25), nil); !errors.Is(err, ErrMissingOptionFields) {
			t.Fatalf("expected ErrMissingOptionFields, got %v", err)
		}
	})

	t.Run("missing expiration is a domain error", func(t *testing.T) {
		broken := p
		broken.ExpirationDate = nil
		if _, err := Build(broken, ptr(4.25), nil); !errors.Is(err, ErrMissingOptionFields) {
			t.Fatalf("expected ErrMissingOptionFields, got %v", err)
		}
	})

	t.Run("missing type is a domain error", func(t *testing.T) {
		broken := p
		broken.OptionType = nil
		if _, err := Build(broken, ptr(4.25), nil); !errors.Is(err, ErrMissingOptionFields) {
			t.Fatalf("expected ErrMissingOptionFields, got %v", err)
		}
	})
}

func TestBuildStrategy(t *testing.T) {
	// Short strangle-ish pair: short call credit 1.25, long put debit 0.75.
	p := model.Position{
		AssetType:           model.AssetTypeOption,
		Symbol:              "SPY",
		Side:                model.SideShort,
		Quantity:            1,
		AverageOpeningPrice: 0.50,
		QuantityMultiplier:  1,
		StrategyName:        strPtr("collar"),
		Legs: []model.Leg{
			{OptionType: model.OptionTypeCall, Direction: model.SideShort, Quantity: 1, StrikePrice: 430, EntryPrice: 1.25},
			{OptionType: model.OptionTypePut, Direction: model.SideLong, Quantity: 1, StrikePrice: 420, EntryPrice: 0.75},
		},
	}

	t.Run("net credit cost basis is valid data", func(t *testing.T) {
		s, err := Build(p, ptr(2.25), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !almostEqual(s.CostBasis, -0.50) {
			t.Fatalf("cost basis mismatch. got=%v want=-0.50", s.CostBasis)
		}
		// Short strategy: costBasis - currentValue.
		if !almostEqual(s.UnrealizedPL, -0.50-2.25) {
			t.Fatalf("P&L mismatch. got=%v want=-2.75", s.UnrealizedPL)
		}
		// Percent must divide by |costBasis| to avoid sign inversion.
		if !almostEqual(s.UnrealizedPLPercent, -2.75/0.50*100) {
			t.Fatalf("P&L percent mismatch. got=%v want=-550", s.UnrealizedPLPercent)
		}
		if !s.MultiLeg || s.LegCount != 2 {
			t.Fatalf("multi-leg metadata mismatch. got=%+v", s)
		}
	})

	t.Run("long debit strategy", func(t *testing.T) {
		debit := p
		debit.Side = model.SideLong
		debit.QuantityMultiplier = 100
		debit.Legs = []model.Leg{
			{OptionType: model.OptionTypeCall, Direction: model.SideLong, Quantity: 1, StrikePrice: 420, EntryPrice: 5.00},
			{OptionType: model.OptionTypeCall, Direction: model.SideShort, Quantity: 1, StrikePrice: 430, EntryPrice: 2.00},
		}
		s, err := Build(debit, ptr(4.50), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !almostEqual(s.CostBasis, 300) {
			t.Fatalf("cost basis mismatch. got=%v want=300", s.CostBasis)
		}
		if !almostEqual(s.UnrealizedPL, 450-300) {
			t.Fatalf("P&L mismatch. got=%v want=150", s.UnrealizedPL)
		}
		if !almostEqual(s.UnrealizedPLPercent, 50) {
			t.Fatalf("P&L percent mismatch. got=%v want=50", s.UnrealizedPLPercent)
		}
	})

	t.Run("no quote pins strategy P&L at zero", func(t *testing.T) {
		s, err := Build(p, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.UnrealizedPL != 0 || s.UnrealizedPLPercent != 0 {
			t.Fatalf("missing quote must never fabricate strategy P&L. got pl=%v", s.UnrealizedPL)
		}
	})

	t.Run("zero net cost basis guards percent", func(t *testing.T) {
		flat := p
		flat.Legs = []model.Leg{
			{OptionType: model.OptionTypeCall, Direction: model.SideShort, Quantity: 1, StrikePrice: 430, EntryPrice: 1.00},
			{OptionType: model.OptionTypePut, Direction: model.SideLong, Quantity: 1, StrikePrice: 420, EntryPrice: 1.00},
		}
		s, err := Build(flat, ptr(2.25), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.UnrealizedPLPercent != 0 {
			t.Fatalf("percent must be 0 for zero cost basis, got %v", s.UnrealizedPLPercent)
		}
	})
}

func TestBuildFutures(t *testing.T) {
	margin := 13200.0
	spec := &model.ContractSpecification{
		Symbol:        "ES",
		Multiplier:    50,
		TickSize:      0.25,
		TickValue:     12.50,
		InitialMargin: &margin,
	}

	p := model.Position{
		AssetType:           model.AssetTypeFutures,
		Symbol:              "ESH25",
		Side:                model.SideLong,
		Quantity:            2,
		AverageOpeningPrice: 4500,
		TotalCostBasis:      450000,
		ContractMonth:       strPtr("MAR25"),
	}

	t.Run("full snapshot", func(t *testing.T) {
		s, err := Build(p, ptr(4510.0), spec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.ExpirationDate != "2025-03-21" {
			t.Fatalf("expiration mismatch. got=%s", s.ExpirationDate)
		}
		if s.ContractMonth != "MAR25" || s.ContractMonthName != "March" {
			t.Fatalf("contract month mismatch. got=%s/%s", s.ContractMonth, s.ContractMonthName)
		}
		if !almostEqual(s.MarketValue, 2*50*4510) {
			t.Fatalf("market value mismatch. got=%v", s.MarketValue)
		}
		if s.NotionalValue == nil || !almostEqual(*s.NotionalValue, 451000) {
			t.Fatalf("notional mismatch. got=%v", s.NotionalValue)
		}
		if s.MarginRequirement == nil || !almostEqual(*s.MarginRequirement, 26400) {
			t.Fatalf("margin mismatch. got=%v", s.MarginRequirement)
		}
		if s.TickSize == nil || *s.TickSize != 0.25 || s.TickValue == nil || *s.TickValue != 12.50 {
			t.Fatalf("tick fields mismatch")
		}
	})

	t.Run("month label parsed from symbol when not stored", func(t *testing.T) {
		bare := p
		bare.ContractMonth = nil
		s, err := Build(bare, ptr(4510.0), spec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.ContractMonth != "H25" {
			t.Fatalf("expected parsed label H25, got %s", s.ContractMonth)
		}
		if s.ExpirationDate != "2025-03-21" {
			t.Fatalf("expiration via parsed symbol mismatch. got=%s", s.ExpirationDate)
		}
	})

	t.Run("non index root falls back to month end", func(t *testing.T) {
		cl := p
		cl.Symbol = "CLH25"
		cl.ContractMonth = nil
		s, err := Build(cl, ptr(70.0), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.ExpirationDate != "2025-03-31" {
			t.Fatalf("expected last-day fallback, got %s", s.ExpirationDate)
		}
	})

	t.Run("position overrides win over the specification", func(t *testing.T) {
		custom := p
		custom.TickSize = ptr(0.5)
		custom.MarginRequirement = ptr(9999.0)
		s, err := Build(custom, ptr(4510.0), spec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.TickSize == nil || *s.TickSize != 0.5 {
			t.Fatalf("tick size override ignored")
		}
		if s.MarginRequirement == nil || *s.MarginRequirement != 9999.0 {
			t.Fatalf("margin override ignored")
		}
	})

	t.Run("no month and no expiration is a domain error", func(t *testing.T) {
		broken := p
		broken.Symbol = "UNPARSEABLE"
		broken.ContractMonth = nil
		if _, err := Build(broken, ptr(4510.0), spec); !errors.Is(err, ErrMissingContractMonth) {
			t.Fatalf("expected ErrMissingContractMonth, got %v", err)
		}
	})

	t.Run("no quote pins futures P&L at zero", func(t *testing.T) {
		s, err := Build(p, nil, spec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.CurrentPrice != 4500 || s.UnrealizedPL != 0 {
			t.Fatalf("futures fallback mismatch. price=%v pl=%v", s.CurrentPrice, s.UnrealizedPL)
		}
	})
}

func TestBuildUnknownAssetType(t *testing.T) {
	if _, err := Build(model.Position{AssetType: "bond"}, nil, nil); !errors.Is(err, ErrUnknownAssetType) {
		t.Fatalf("expected ErrUnknownAssetType, got %v", err)
	}
}

func TestBuildDoesNotMutateInputs(t *testing.T) {
	margin := 13200.0
	spec := &model.ContractSpecification{Symbol: "ES", Multiplier: 50, TickSize: 0.25, TickValue: 12.50, InitialMargin: &margin}
	p := model.Position{
		AssetType:           model.AssetTypeFutures,
		Symbol:              "ESH25",
		Side:                model.SideLong,
		Quantity:            2,
		AverageOpeningPrice: 4500,
		TotalCostBasis:      450000,
	}
	before := p
	specBefore := *spec

	if _, err := Build(p, ptr(4510.0), spec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(p, before) {
		t.Fatalf("position mutated by Build")
	}
	if spec.Symbol != specBefore.Symbol || spec.Multiplier != specBefore.Multiplier || *spec.InitialMargin != margin {
		t.Fatalf("specification mutated by Build")
	}
}
