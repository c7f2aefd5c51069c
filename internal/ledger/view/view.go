package view

import (
	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/ledger"
	"github.com/zappabad/trenchor/internal/market"
)

// Valuation splits a player's worth into cash and commodities at current prices.
type Valuation struct {
	Cash     decimal.Decimal `json:"cash"`
	Holdings decimal.Decimal `json:"holdings"`
	Total    decimal.Decimal `json:"total"`
}

// PlayerReport is the detailed view of one player.
type PlayerReport struct {
	Name         ledger.PlayerID              `json:"name"`
	Round        int                          `json:"round"`
	Balance      decimal.Decimal              `json:"balance"`
	Initial      decimal.Decimal              `json:"initial_balance"`
	Portfolio    Valuation                    `json:"portfolio"`
	Holdings     map[market.CommodityID]int64 `json:"holdings"`
	RecentTrades []ledger.Trade               `json:"recent_trades"`
	Stats        ledger.TradeStats            `json:"stats"`
}
