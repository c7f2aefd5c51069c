package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/ledger"
	"github.com/zappabad/trenchor/internal/market"
)

type fixedPrices map[market.CommodityID]decimal.Decimal

func (p fixedPrices) Price(id market.CommodityID) (decimal.Decimal, error) {
	v, ok := p[id]
	if !ok {
		return decimal.Decimal{}, market.ErrUnknownCommodity
	}
	return v, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestLedger(t *testing.T, players ...ledger.PlayerID) *Ledger {
	t.Helper()
	l := NewLedger([]market.CommodityID{"gold", "silver", "wheat"}, DefaultConfig(), nil)
	for _, p := range players {
		if err := l.RegisterPlayer(p, decimal.NewFromInt(10000)); err != nil {
			t.Fatalf("RegisterPlayer(%s): %v", p, err)
		}
	}
	return l
}

func TestRegisterPlayer(t *testing.T) {
	l := newTestLedger(t, "alice", "bob")

	if err := l.RegisterPlayer("alice", decimal.NewFromInt(5)); !errors.Is(err, ledger.ErrDuplicatePlayer) {
		t.Fatalf("expected ErrDuplicatePlayer, got %v", err)
	}
	if err := l.RegisterPlayer("carol", decimal.NewFromInt(-1)); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if l.Has("carol") {
		t.Fatal("rejected player should not be registered")
	}

	players := l.Players()
	if len(players) != 2 || players[0] != "alice" || players[1] != "bob" {
		t.Fatalf("players = %v, want [alice bob]", players)
	}

	bal, err := l.Balance("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bal.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("balance = %s, want 10000", bal)
	}
	h, _ := l.Holdings("alice")
	if len(h) != 0 {
		t.Errorf("new player should hold nothing, got %v", h)
	}
}

func TestBuyRejectedWhenFundsShort(t *testing.T) {
	l := NewLedger([]market.CommodityID{"gold"}, DefaultConfig(), nil)
	if err := l.RegisterPlayer("p", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := l.ApplyBuy("p", "gold", 5, decimal.NewFromInt(100), 0)
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	bal, _ := l.Balance("p")
	if !bal.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance changed to %s", bal)
	}
	h, _ := l.Holdings("p")
	if len(h) != 0 {
		t.Errorf("holdings changed to %v", h)
	}
	trades, _ := l.Trades("p")
	if len(trades) != 0 {
		t.Errorf("expected no trades, got %d", len(trades))
	}
}

func TestSellRejectedWithoutHoldings(t *testing.T) {
	l := newTestLedger(t, "p")

	_, err := l.ApplySell("p", "gold", 1, decimal.NewFromInt(100), 0)
	if !errors.Is(err, ledger.ErrInsufficientHoldings) {
		t.Fatalf("expected ErrInsufficientHoldings, got %v", err)
	}
	bal, _ := l.Balance("p")
	if !bal.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("balance changed to %s", bal)
	}
}

func TestLookupErrors(t *testing.T) {
	l := newTestLedger(t, "p")
	price := decimal.NewFromInt(10)

	if _, err := l.ApplyBuy("ghost", "gold", 1, price, 0); !errors.Is(err, ledger.ErrUnknownPlayer) {
		t.Errorf("buy unknown player: got %v", err)
	}
	if _, err := l.ApplySell("ghost", "gold", 1, price, 0); !errors.Is(err, ledger.ErrUnknownPlayer) {
		t.Errorf("sell unknown player: got %v", err)
	}
	if _, err := l.ApplyBuy("p", "platinum", 1, price, 0); !errors.Is(err, market.ErrUnknownCommodity) {
		t.Errorf("buy unknown commodity: got %v", err)
	}
	if _, err := l.ApplyBuy("p", "gold", 0, price, 0); !errors.Is(err, ledger.ErrInvalidQuantity) {
		t.Errorf("buy zero quantity: got %v", err)
	}
	if _, err := l.ApplySell("p", "gold", -3, price, 0); !errors.Is(err, ledger.ErrInvalidQuantity) {
		t.Errorf("sell negative quantity: got %v", err)
	}
	if _, err := l.ApplyBuy("p", "gold", 1, decimal.Zero, 0); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Errorf("buy at zero price: got %v", err)
	}
	// unknown player wins over unknown commodity
	if _, err := l.ApplyBuy("ghost", "platinum", 1, price, 0); !errors.Is(err, ledger.ErrUnknownPlayer) {
		t.Errorf("expected player check first, got %v", err)
	}
	if _, err := l.Balance("ghost"); !errors.Is(err, ledger.ErrUnknownPlayer) {
		t.Errorf("balance unknown player: got %v", err)
	}
	if _, err := l.Valuation("ghost", fixedPrices{}); !errors.Is(err, ledger.ErrUnknownPlayer) {
		t.Errorf("valuation unknown player: got %v", err)
	}
}

func TestBuySellRoundTrip(t *testing.T) {
	l := newTestLedger(t, "p")

	ex, err := l.ApplyBuy("p", "gold", 10, dec("100.00"), 1)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if !ex.Amount.Equal(dec("1000")) || !ex.Balance.Equal(dec("9000")) {
		t.Fatalf("buy execution = %s/%s, want 1000/9000", ex.Amount, ex.Balance)
	}
	if ex.Trade.Side != ledger.SideBuy || ex.Trade.Round != 1 || ex.Trade.Quantity != 10 {
		t.Errorf("unexpected trade %+v", ex.Trade)
	}

	ex, err = l.ApplySell("p", "gold", 4, dec("110.50"), 2)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if !ex.Amount.Equal(dec("442")) || !ex.Balance.Equal(dec("9442")) {
		t.Fatalf("sell execution = %s/%s, want 442/9442", ex.Amount, ex.Balance)
	}

	got, _ := l.Holding("p", "gold")
	if got != 6 {
		t.Errorf("gold holding = %d, want 6", got)
	}

	if _, err := l.ApplySell("p", "gold", 6, dec("90"), 3); err != nil {
		t.Fatalf("sell rest: %v", err)
	}
	h, _ := l.Holdings("p")
	if _, ok := h["gold"]; ok {
		t.Errorf("fully sold commodity should be absent, got %v", h)
	}

	trades, _ := l.Trades("p")
	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}
	if trades[0].ID == trades[1].ID {
		t.Error("trade ids should be unique")
	}
}

func TestValuationAndReport(t *testing.T) {
	l := newTestLedger(t, "p")
	if _, err := l.ApplyBuy("p", "gold", 10, dec("100"), 0); err != nil {
		t.Fatalf("buy gold: %v", err)
	}
	if _, err := l.ApplyBuy("p", "wheat", 20, dec("30"), 0); err != nil {
		t.Fatalf("buy wheat: %v", err)
	}

	prices := fixedPrices{"gold": dec("120"), "silver": dec("50"), "wheat": dec("25")}
	v, err := l.Valuation("p", prices)
	if err != nil {
		t.Fatalf("valuation: %v", err)
	}
	// cash 10000 - 1000 - 600 = 8400; holdings 1200 + 500 = 1700
	if !v.Cash.Equal(dec("8400")) || !v.Holdings.Equal(dec("1700")) || !v.Total.Equal(dec("10100")) {
		t.Fatalf("valuation = %+v", v)
	}

	// prices are read every time
	prices["gold"] = dec("80")
	v, _ = l.Valuation("p", prices)
	if !v.Total.Equal(dec("9700")) {
		t.Errorf("valuation after price drop = %s, want 9700", v.Total)
	}

	for i := 0; i < 6; i++ {
		if _, err := l.ApplyBuy("p", "silver", 1, dec("50"), i+1); err != nil {
			t.Fatalf("buy silver: %v", err)
		}
	}

	rep, err := l.Report("p", 6, prices)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep.Name != "p" || rep.Round != 6 {
		t.Errorf("report header = %s/%d", rep.Name, rep.Round)
	}
	if len(rep.RecentTrades) != 5 {
		t.Fatalf("expected 5 recent trades, got %d", len(rep.RecentTrades))
	}
	if rep.RecentTrades[4].Round != 6 {
		t.Errorf("last recent trade round = %d, want 6", rep.RecentTrades[4].Round)
	}
	if rep.Stats.Total != 8 || rep.Stats.Buys != 8 || rep.Stats.Sells != 0 {
		t.Errorf("stats = %+v", rep.Stats)
	}
	if rep.Holdings["silver"] != 6 || len(rep.Holdings) != 3 {
		t.Errorf("holdings = %v", rep.Holdings)
	}
	if !rep.Initial.Equal(dec("10000")) {
		t.Errorf("initial = %s", rep.Initial)
	}

	// report holdings are a copy
	rep.Holdings["gold"] = 999
	if got, _ := l.Holding("p", "gold"); got != 10 {
		t.Errorf("report leaked internal holdings, gold = %d", got)
	}
}

func TestBalanceNeverNegative(t *testing.T) {
	l := newTestLedger(t, "p")
	price := dec("333.33")

	for i := 0; i < 100; i++ {
		_, _ = l.ApplyBuy("p", "gold", 7, price, i)
		_, _ = l.ApplySell("p", "gold", 3, price.Add(decimal.NewFromInt(int64(i%5))), i)

		bal, _ := l.Balance("p")
		if bal.IsNegative() {
			t.Fatalf("balance went negative at step %d: %s", i, bal)
		}
		if got, _ := l.Holding("p", "gold"); got < 0 {
			t.Fatalf("holding went negative at step %d: %d", i, got)
		}
	}

	trades, _ := l.Trades("p")
	rep, _ := l.Report("p", 100, fixedPrices{"gold": price})
	if rep.Stats.Total != len(trades) || rep.Stats.Buys+rep.Stats.Sells != rep.Stats.Total {
		t.Errorf("stats %+v inconsistent with %d trades", rep.Stats, len(trades))
	}
}
