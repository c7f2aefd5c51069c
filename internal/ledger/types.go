package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/market"
)

var (
	ErrUnknownPlayer        = errors.New("unknown player")
	ErrDuplicatePlayer      = errors.New("duplicate player")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidAmount        = errors.New("invalid amount")
)

// PlayerID uniquely identifies a player. It doubles as the display name.
type PlayerID string

// Side is the direction of a trade.
type Side uint8

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the side as BUY or SELL.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Trade is one executed buy or sell. Trades are never modified after they are recorded.
type Trade struct {
	ID        uuid.UUID          `json:"id"`
	Side      Side               `json:"side"`
	Commodity market.CommodityID `json:"commodity"`
	Quantity  int64              `json:"quantity"`
	Price     decimal.Decimal    `json:"price"`
	Round     int                `json:"round"`
	Time      time.Time          `json:"time"`
}

// Total is quantity times unit price.
func (t Trade) Total() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}

// TradeStats counts a player's trades.
type TradeStats struct {
	Total int `json:"total"`
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// Execution is the outcome of a successful buy or sell.
type Execution struct {
	Trade Trade
	// Amount is the cost of a buy or the revenue of a sell.
	Amount decimal.Decimal
	// Balance is the cash left after the trade.
	Balance decimal.Decimal
}

// Summary renders the execution as a short sentence, e.g.
// "Bought 5 units of gold at 100.00".
func (e Execution) Summary() string {
	verb := "Bought"
	if e.Trade.Side == SideSell {
		verb = "Sold"
	}
	return fmt.Sprintf("%s %d units of %s at %s", verb, e.Trade.Quantity, e.Trade.Commodity, e.Trade.Price.StringFixed(2))
}

// PriceLookup resolves the current price of a commodity.
type PriceLookup interface {
	Price(id market.CommodityID) (decimal.Decimal, error)
}
