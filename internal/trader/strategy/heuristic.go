package strategy

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/entropy"
	"github.com/zappabad/trenchor/internal/ledger"
	marketview "github.com/zappabad/trenchor/internal/market/view"
	"github.com/zappabad/trenchor/internal/trader"
)

const (
	buyConfidence  = 0.8
	sellConfidence = 0.8
)

// Heuristic is the rule-based trend follower used by AI opponents.
//
// It buys small dips (price fell by less than BuyThreshold) and takes profit
// on strong rises (price rose by more than SellThreshold) in commodities it
// owns. Trade sizes scale with RiskTolerance and a random factor.
type Heuristic struct {
	profile Profile
	src     entropy.Source
}

// NewHeuristic creates a Heuristic. A nil src draws from a clock-seeded source.
func NewHeuristic(p Profile, src entropy.Source) *Heuristic {
	if src == nil {
		src = entropy.NewSeeded(0)
	}
	return &Heuristic{profile: p, src: src}
}

// Profile returns the parameters in use.
func (h *Heuristic) Profile() Profile { return h.profile }

// Decide implements Strategy.
func (h *Heuristic) Decide(snap marketview.MarketSnapshot, pf trader.Portfolio) (trader.Intent, bool) {
	var (
		best  trader.Intent
		found bool
	)
	consider := func(in trader.Intent) {
		// strictly greater keeps the earliest commodity on ties
		if !found || in.Confidence > best.Confidence {
			best, found = in, true
		}
	}

	for _, q := range snap.Quotes {
		prev, ok := q.Previous()
		if !ok || !prev.IsPositive() {
			continue
		}
		cur := q.Price
		move := cur.Sub(prev).Abs().Div(prev).InexactFloat64()

		if move < h.profile.BuyThreshold && cur.LessThan(prev) {
			if qty := h.buyQuantity(pf.Balance, cur); qty > 0 {
				consider(trader.Intent{
					Side:       ledger.SideBuy,
					Commodity:  q.ID,
					Quantity:   qty,
					Confidence: buyConfidence,
				})
			}
		}

		owned := pf.Holdings[q.ID]
		if owned > 0 && move > h.profile.SellThreshold && cur.GreaterThan(prev) {
			consider(trader.Intent{
				Side:       ledger.SideSell,
				Commodity:  q.ID,
				Quantity:   h.sellQuantity(owned),
				Confidence: sellConfidence,
			})
		}
	}

	return best, found
}

// buyQuantity is floor(affordable * risk * U[0.5, 1.5)) clamped to [1, affordable],
// or 0 when not even one unit is affordable.
func (h *Heuristic) buyQuantity(balance, price decimal.Decimal) int64 {
	if !price.IsPositive() {
		return 0
	}
	affordable := balance.Div(price).Floor().IntPart()
	if affordable <= 0 {
		return 0
	}
	factor := entropy.Between(h.src, 0.5, 1.5)
	qty := int64(math.Floor(float64(affordable) * h.profile.RiskTolerance * factor))
	if qty < 1 {
		qty = 1
	}
	if qty > affordable {
		qty = affordable
	}
	return qty
}

// sellQuantity is floor(owned * (0.4 + U[0, 1) * 0.3 * risk)), at least 1.
func (h *Heuristic) sellQuantity(owned int64) int64 {
	share := 0.4 + h.src.Float64()*0.3*h.profile.RiskTolerance
	qty := int64(math.Floor(float64(owned) * share))
	if qty < 1 {
		qty = 1
	}
	return qty
}
