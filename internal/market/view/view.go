package view

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/market"
)

// Quote is the public face of one commodity at a point in time.
type Quote struct {
	ID    market.CommodityID `json:"id"`
	Name  string             `json:"name"`
	Price decimal.Decimal    `json:"price"`
	// ChangePercent is last round's move in percent, e.g. -3.21.
	ChangePercent decimal.Decimal `json:"change_percent"`
	// Change is ChangePercent formatted for display, e.g. "-3.21%".
	Change string `json:"change"`
	// History holds the most recent prices, oldest first, current price last.
	History []decimal.Decimal `json:"history"`
}

// Previous returns the price before the current one, if the window holds one.
func (q Quote) Previous() (decimal.Decimal, bool) {
	if len(q.History) < 2 {
		return decimal.Decimal{}, false
	}
	return q.History[len(q.History)-2], true
}

// MarketSnapshot is a point-in-time copy of every quote, in catalog order.
type MarketSnapshot struct {
	Round  int     `json:"round"`
	Quotes []Quote `json:"quotes"`
}

// Quote looks up one commodity in the snapshot.
func (s MarketSnapshot) Quote(id market.CommodityID) (Quote, bool) {
	for _, q := range s.Quotes {
		if q.ID == id {
			return q, true
		}
	}
	return Quote{}, false
}

// Price implements the price lookup used for valuations.
func (s MarketSnapshot) Price(id market.CommodityID) (decimal.Decimal, error) {
	q, ok := s.Quote(id)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", market.ErrUnknownCommodity, id)
	}
	return q.Price, nil
}

// FormatChange renders a percent change the way quotes display it.
func FormatChange(pct decimal.Decimal) string {
	return pct.StringFixed(2) + "%"
}
