package feed

import (
	"time"

	"github.com/zappabad/trenchor/internal/market"
)

// HeadlineID uniquely identifies a headline. IDs increase in publish order.
type HeadlineID int64

// Kind classifies a headline.
type Kind int

const (
	KindRound Kind = iota
	KindMover
	KindTrade
	KindGameOver
)

func (k Kind) String() string {
	switch k {
	case KindRound:
		return "round"
	case KindMover:
		return "mover"
	case KindTrade:
		return "trade"
	case KindGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Headline is one line of game news.
type Headline struct {
	ID        HeadlineID
	Time      time.Time
	Round     int
	Kind      Kind
	Commodity market.CommodityID // optional; empty means market-wide
	Text      string
	Severity  int // 0=normal, positive=more important
}
