package game

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/ledger"
	marketview "github.com/zappabad/trenchor/internal/market/view"
	"github.com/zappabad/trenchor/internal/trader"
)

var ErrGameFinished = errors.New("game finished")

// State is the lifecycle stage of a session.
type State uint8

const (
	StateInitializing State = iota
	StateActive
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TradeResult confirms an executed buy or sell.
type TradeResult struct {
	Message string          `json:"message"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
	Trade   ledger.Trade    `json:"trade"`
}

// Standing is one row of the leaderboard.
type Standing struct {
	Rank          int             `json:"rank"`
	Name          ledger.PlayerID `json:"name"`
	Balance       decimal.Decimal `json:"balance"`
	Valuation     decimal.Decimal `json:"valuation"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitPercent decimal.Decimal `json:"profit_percent"`
}

// RoundReport is what happened in one round of an AI game.
type RoundReport struct {
	Round  int                       `json:"round"`
	Market marketview.MarketSnapshot `json:"market"`
	Turns  []trader.Event            `json:"-"`
}

// Results summarizes a finished game.
type Results struct {
	SessionID  uuid.UUID  `json:"session_id"`
	Rounds     int        `json:"rounds"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Standings  []Standing `json:"standings"`
}
