package service

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zappabad/trenchor/internal/entropy"
	"github.com/zappabad/trenchor/internal/logging"
	"github.com/zappabad/trenchor/internal/market"
	marketview "github.com/zappabad/trenchor/internal/market/view"
)

var (
	hundred = decimal.NewFromInt(100)
	// smallest quotable price
	minPrice = decimal.New(1, -market.PriceDecimals)
)

type entry struct {
	commodity market.Commodity
	price     decimal.Decimal
	history   []decimal.Decimal
	change    decimal.Decimal
}

// MarketService owns the commodity catalog and the price series of every commodity.
// Prices only move through Advance.
type MarketService struct {
	cfg   Config
	src   entropy.Source
	log   logrus.FieldLogger
	floor decimal.Decimal

	mu      sync.RWMutex
	order   []market.CommodityID
	entries map[market.CommodityID]*entry
	rounds  int
}

// NewMarketService seeds one entry per commodity at its base price.
func NewMarketService(catalog []market.Commodity, cfg Config, src entropy.Source, log logrus.FieldLogger) (*MarketService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = entropy.NewSeeded(0)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("%w: empty catalog", market.ErrInvalidCommodity)
	}

	s := &MarketService{
		cfg:     cfg,
		src:     src,
		log:     logging.OrDiscard(log),
		floor:   decimal.NewFromFloat(cfg.FloorRatio),
		order:   make([]market.CommodityID, 0, len(catalog)),
		entries: make(map[market.CommodityID]*entry, len(catalog)),
	}

	for _, c := range catalog {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.entries[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", market.ErrInvalidCommodity, c.ID)
		}
		base := c.BasePrice.Round(market.PriceDecimals)
		s.order = append(s.order, c.ID)
		s.entries[c.ID] = &entry{
			commodity: c,
			price:     base,
			history:   []decimal.Decimal{base},
			change:    decimal.Zero,
		}
	}

	return s, nil
}

// Advance moves every price once. Each commodity draws a perturbation in
// [-volatility, +volatility] of its current price; the result never drops
// below FloorRatio of the previous price and is rounded to PriceDecimals.
// It returns the number of advances applied so far.
func (s *MarketService) Advance() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		e := s.entries[id]
		vol := e.commodity.Volatility

		prev := e.price
		factor := decimal.NewFromFloat(1 + entropy.Between(s.src, -vol, vol))
		next := prev.Mul(factor)
		if floor := prev.Mul(s.floor); next.LessThan(floor) {
			next = floor
		}
		next = next.Round(market.PriceDecimals)
		if next.LessThan(minPrice) {
			next = minPrice
		}

		e.change = next.Sub(prev).Div(prev).Mul(hundred)
		e.price = next
		e.history = append(e.history, next)
	}
	s.rounds++

	s.log.WithField("advances", s.rounds).Debug("market prices advanced")
	return s.rounds
}

// Price returns the current price of a commodity.
func (s *MarketService) Price(id market.CommodityID) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", market.ErrUnknownCommodity, id)
	}
	return e.price, nil
}

// History returns a copy of the full price series of a commodity, seed price first.
func (s *MarketService) History(id market.CommodityID) ([]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", market.ErrUnknownCommodity, id)
	}
	out := make([]decimal.Decimal, len(e.history))
	copy(out, e.history)
	return out, nil
}

// Has reports whether id is in the catalog.
func (s *MarketService) Has(id market.CommodityID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[id]
	return ok
}

// Commodities returns the catalog in the order it was loaded.
func (s *MarketService) Commodities() []market.Commodity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]market.Commodity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].commodity)
	}
	return out
}

// Snapshot returns a copy of every quote with the last HistoryWindow prices.
func (s *MarketService) Snapshot() marketview.MarketSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := marketview.MarketSnapshot{
		Round:  s.rounds,
		Quotes: make([]marketview.Quote, 0, len(s.order)),
	}
	for _, id := range s.order {
		e := s.entries[id]

		start := len(e.history) - s.cfg.HistoryWindow
		if start < 0 {
			start = 0
		}
		window := make([]decimal.Decimal, len(e.history)-start)
		copy(window, e.history[start:])

		snap.Quotes = append(snap.Quotes, marketview.Quote{
			ID:            id,
			Name:          e.commodity.DisplayName(),
			Price:         e.price,
			ChangePercent: e.change,
			Change:        marketview.FormatChange(e.change),
			History:       window,
		})
	}
	return snap
}
