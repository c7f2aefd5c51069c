package strategy

import (
	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/ledger"
	"github.com/zappabad/trenchor/internal/market"
	marketview "github.com/zappabad/trenchor/internal/market/view"
	"github.com/zappabad/trenchor/internal/trader"
)

// MarketReader provides read-only access to market data.
type MarketReader interface {
	MarketSnapshot() marketview.MarketSnapshot
}

// PortfolioReader provides read-only access to a player's cash and holdings.
type PortfolioReader interface {
	Balance(id ledger.PlayerID) (decimal.Decimal, error)
	Holdings(id ledger.PlayerID) (map[market.CommodityID]int64, error)
}

// OrderSender executes trades on behalf of a player at the current price.
type OrderSender interface {
	Submit(id ledger.PlayerID, side ledger.Side, c market.CommodityID, qty int64) (ledger.Execution, error)
}

// Strategy is the interface for trading strategies.
type Strategy interface {
	// Decide returns at most one intent for this turn. It must not mutate its inputs.
	Decide(snap marketview.MarketSnapshot, pf trader.Portfolio) (trader.Intent, bool)
}
