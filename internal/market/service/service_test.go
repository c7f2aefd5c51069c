package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/entropy"
	"github.com/zappabad/trenchor/internal/market"
)

func newTestMarket(t *testing.T, src entropy.Source, catalog ...market.Commodity) *MarketService {
	t.Helper()
	if len(catalog) == 0 {
		catalog = market.DefaultCatalog()
	}
	svc, err := NewMarketService(catalog, DefaultConfig(), src, nil)
	if err != nil {
		t.Fatalf("NewMarketService: %v", err)
	}
	return svc
}

func TestMarketServiceInitialize(t *testing.T) {
	svc := newTestMarket(t, entropy.NewSequence(0.5))

	snap := svc.Snapshot()
	if len(snap.Quotes) != 5 {
		t.Fatalf("expected 5 quotes, got %d", len(snap.Quotes))
	}
	gold := snap.Quotes[0]
	if gold.ID != "gold" || gold.Name != "Gold" {
		t.Errorf("first quote = %s/%s, want gold/Gold", gold.ID, gold.Name)
	}
	if !gold.Price.Equal(decimal.NewFromInt(100)) {
		t.Errorf("gold price = %s, want 100", gold.Price)
	}
	if len(gold.History) != 1 {
		t.Errorf("expected seed history of 1, got %d", len(gold.History))
	}
	if gold.Change != "0.00%" {
		t.Errorf("change = %q, want 0.00%%", gold.Change)
	}
}

func TestMarketServiceRejectsBadCatalog(t *testing.T) {
	cases := map[string][]market.Commodity{
		"empty": nil,
		"duplicate": {
			{ID: "gold", BasePrice: decimal.NewFromInt(1), Volatility: 0.1},
			{ID: "gold", BasePrice: decimal.NewFromInt(2), Volatility: 0.1},
		},
		"zero price":     {{ID: "gold", Volatility: 0.1}},
		"rounds to zero": {{ID: "dust", BasePrice: decimal.RequireFromString("0.004"), Volatility: 0.1}},
		"volatility":     {{ID: "gold", BasePrice: decimal.NewFromInt(1), Volatility: 1}},
	}
	for name, catalog := range cases {
		_, err := NewMarketService(catalog, DefaultConfig(), nil, nil)
		if !errors.Is(err, market.ErrInvalidCommodity) {
			t.Errorf("%s: expected ErrInvalidCommodity, got %v", name, err)
		}
	}
}

func TestMarketServiceRejectsBadConfig(t *testing.T) {
	cases := map[string]Config{
		"zero window":  {HistoryWindow: 0, FloorRatio: 0.5},
		"one price":    {HistoryWindow: 1, FloorRatio: 0.5},
		"zero floor":   {HistoryWindow: 5, FloorRatio: 0},
		"floor over 1": {HistoryWindow: 5, FloorRatio: 1.5},
	}
	for name, cfg := range cases {
		if _, err := NewMarketService(market.DefaultCatalog(), cfg, nil, nil); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestAdvanceKeepsCheapestPricePositive(t *testing.T) {
	dust := market.Commodity{ID: "dust", BasePrice: decimal.RequireFromString("0.01"), Volatility: 0.9}

	// 0.0 maps to the largest drop; the floor alone would round to 0.00.
	svc, err := NewMarketService([]market.Commodity{dust}, Config{HistoryWindow: 5, FloorRatio: 0.1}, entropy.NewSequence(0), nil)
	if err != nil {
		t.Fatalf("NewMarketService: %v", err)
	}
	for i := 0; i < 3; i++ {
		svc.Advance()
	}

	p, err := svc.Price("dust")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("price = %s, want 0.01", p)
	}
}

func TestAdvanceAppliesDraw(t *testing.T) {
	gold := market.Commodity{ID: "gold", Name: "Gold", BasePrice: decimal.NewFromInt(100), Volatility: 0.15}

	// 0.75 maps to +0.075 of the price.
	svc := newTestMarket(t, entropy.NewSequence(0.75), gold)
	svc.Advance()

	p, err := svc.Price("gold")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Equal(decimal.RequireFromString("107.5")) {
		t.Errorf("price = %s, want 107.5", p)
	}

	q, _ := svc.Snapshot().Quote("gold")
	if q.Change != "7.50%" {
		t.Errorf("change = %q, want 7.50%%", q.Change)
	}
}

func TestAdvanceScenarioGold(t *testing.T) {
	svc := newTestMarket(t, entropy.NewSeeded(7))
	svc.Advance()

	p, _ := svc.Price("gold")
	if p.LessThan(decimal.NewFromInt(50)) {
		t.Errorf("gold price %s fell below 50", p)
	}
	h, _ := svc.History("gold")
	if len(h) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(h))
	}
}

func TestAdvanceNeverBelowFloor(t *testing.T) {
	crash := market.Commodity{ID: "crash", BasePrice: decimal.NewFromInt(100), Volatility: 0.99}

	// A draw of 0 is the largest possible drop.
	svc := newTestMarket(t, entropy.NewSequence(0), crash)
	for i := 0; i < 20; i++ {
		before, _ := svc.Price("crash")
		svc.Advance()
		after, _ := svc.Price("crash")

		if after.LessThan(before.Mul(decimal.NewFromFloat(0.5))) {
			t.Fatalf("advance %d: %s is below half of %s", i, after, before)
		}
		if !after.IsPositive() {
			t.Fatalf("advance %d: price %s is not positive", i, after)
		}
	}
}

func TestHistoryLengthTracksAdvances(t *testing.T) {
	svc := newTestMarket(t, entropy.NewSeeded(1))
	for round := 1; round <= 12; round++ {
		if got := svc.Advance(); got != round {
			t.Fatalf("Advance() = %d, want %d", got, round)
		}
		for _, c := range svc.Commodities() {
			h, err := svc.History(c.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(h) != round+1 {
				t.Fatalf("%s history = %d, want %d", c.ID, len(h), round+1)
			}
		}
	}
}

func TestSnapshotWindowIsCopy(t *testing.T) {
	svc := newTestMarket(t, entropy.NewSeeded(3))
	for i := 0; i < 8; i++ {
		svc.Advance()
	}

	snap := svc.Snapshot()
	q, ok := snap.Quote("oil")
	if !ok {
		t.Fatal("oil not in snapshot")
	}
	if len(q.History) != 5 {
		t.Fatalf("expected 5 history points, got %d", len(q.History))
	}
	if !q.History[4].Equal(q.Price) {
		t.Errorf("last history point %s != price %s", q.History[4], q.Price)
	}

	q.History[4] = decimal.Zero
	p, _ := svc.Price("oil")
	h, _ := svc.History("oil")
	if !h[len(h)-1].Equal(p) {
		t.Error("mutating a snapshot changed the market")
	}
}

func TestUnknownCommodity(t *testing.T) {
	svc := newTestMarket(t, nil)

	if _, err := svc.Price("platinum"); !errors.Is(err, market.ErrUnknownCommodity) {
		t.Errorf("expected ErrUnknownCommodity, got %v", err)
	}
	if _, err := svc.History("platinum"); !errors.Is(err, market.ErrUnknownCommodity) {
		t.Errorf("expected ErrUnknownCommodity, got %v", err)
	}
	if svc.Has("platinum") {
		t.Error("Has(platinum) = true")
	}
}
