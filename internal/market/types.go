package market

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownCommodity = errors.New("unknown commodity")
	ErrInvalidCommodity = errors.New("invalid commodity")
)

// PriceDecimals is the precision every quoted price is rounded to.
const PriceDecimals int32 = 2

// CommodityID uniquely identifies a commodity, e.g. "gold".
type CommodityID string

// Commodity is a tradeable good. It does not change once the market is built.
type Commodity struct {
	ID        CommodityID
	Name      string
	BasePrice decimal.Decimal
	// Volatility is the largest fraction of the price that can move in one round.
	Volatility float64
}

// Validate checks the commodity can seed a market entry.
func (c Commodity) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidCommodity)
	}
	if !c.BasePrice.Round(PriceDecimals).IsPositive() {
		return fmt.Errorf("%w: %s: base price must be at least 0.01", ErrInvalidCommodity, c.ID)
	}
	if c.Volatility <= 0 || c.Volatility >= 1 {
		return fmt.Errorf("%w: %s: volatility must be in (0, 1)", ErrInvalidCommodity, c.ID)
	}
	return nil
}

// DisplayName returns Name, or the id when no name was configured.
func (c Commodity) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return string(c.ID)
}

// DefaultCatalog returns the five commodities of the standard game.
func DefaultCatalog() []Commodity {
	return []Commodity{
		{ID: "gold", Name: "Gold", BasePrice: decimal.NewFromInt(100), Volatility: 0.15},
		{ID: "silver", Name: "Silver", BasePrice: decimal.NewFromInt(50), Volatility: 0.12},
		{ID: "wheat", Name: "Wheat", BasePrice: decimal.NewFromInt(30), Volatility: 0.20},
		{ID: "oil", Name: "Oil", BasePrice: decimal.NewFromInt(80), Volatility: 0.18},
		{ID: "uranium", Name: "Uranium", BasePrice: decimal.NewFromInt(200), Volatility: 0.25},
	}
}
