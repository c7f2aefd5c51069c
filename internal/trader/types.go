package trader

import (
	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/ledger"
	"github.com/zappabad/trenchor/internal/market"
)

// Intent is a trader's decision to buy or sell one commodity.
type Intent struct {
	Side       ledger.Side
	Commodity  market.CommodityID
	Quantity   int64
	Confidence float64
}

// Portfolio is the read-only state a strategy decides from.
type Portfolio struct {
	Balance  decimal.Decimal
	Holdings map[market.CommodityID]int64
}

// EventType indicates the outcome of a trader's turn.
type EventType int

const (
	// EventIdle means the strategy found nothing to do.
	EventIdle EventType = iota
	// EventTraded means the intent was executed.
	EventTraded
	// EventSkipped means the intent was rejected and the turn was lost.
	EventSkipped
)

func (t EventType) String() string {
	switch t {
	case EventIdle:
		return "idle"
	case EventTraded:
		return "traded"
	case EventSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Event records one turn of a trader.
type Event struct {
	Trader  ledger.PlayerID
	Round   int
	Type    EventType
	Intent  *Intent       // nil when idle
	Trade   *ledger.Trade // set when traded
	Message string        // human readable outcome, or the rejection reason
}

// Stats counts a trader's turns.
type Stats struct {
	Turns   int `json:"turns"`
	Trades  int `json:"trades"`
	Skipped int `json:"skipped"`
	Idle    int `json:"idle"`
}
