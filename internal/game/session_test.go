package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/config"
	"github.com/zappabad/trenchor/internal/entropy"
	"github.com/zappabad/trenchor/internal/feed"
	"github.com/zappabad/trenchor/internal/ledger"
	"github.com/zappabad/trenchor/internal/market"
	"github.com/zappabad/trenchor/internal/trader/strategy"
)

func newTestSession(t *testing.T, mutate func(*Config)) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxRounds = 3
	cfg.Source = entropy.NewSequence(0.5)
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSession(cfg, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestNewSessionRejectsZeroRounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRounds = 0
	if _, err := NewSession(cfg, nil); err == nil {
		t.Fatal("expected an error for zero rounds")
	}
}

func TestLifecycle(t *testing.T) {
	s := newTestSession(t, nil)
	if s.State() != StateInitializing || s.Round() != 0 {
		t.Fatalf("fresh session = %s/%d", s.State(), s.Round())
	}

	for i := 1; i <= 3; i++ {
		if !s.AdvanceRound() {
			t.Fatalf("advance %d returned false", i)
		}
		if s.Round() != i {
			t.Fatalf("round = %d, want %d", s.Round(), i)
		}
	}
	if s.State() != StateFinished {
		t.Fatalf("state after max rounds = %s, want finished", s.State())
	}

	for i := 0; i < 2; i++ {
		if s.AdvanceRound() {
			t.Fatal("advance past the last round should return false")
		}
	}
	if s.Round() != 3 {
		t.Errorf("round changed to %d", s.Round())
	}

	if err := s.AddPlayer("late", decimal.NewFromInt(1)); !errors.Is(err, ErrGameFinished) {
		t.Errorf("expected ErrGameFinished, got %v", err)
	}
}

func TestHistoryTracksRounds(t *testing.T) {
	s := newTestSession(t, func(c *Config) { c.MaxRounds = 8 })
	for s.AdvanceRound() {
		for _, c := range s.Commodities() {
			h, err := s.PriceHistory(c.ID)
			if err != nil {
				t.Fatalf("history: %v", err)
			}
			if len(h) != s.Round()+1 {
				t.Fatalf("%s history = %d, want %d", c.ID, len(h), s.Round()+1)
			}
		}
	}
}

func TestBuySellThroughSession(t *testing.T) {
	s := newTestSession(t, func(c *Config) { c.Human = "alice" })

	res, err := s.Buy("alice", "gold", 10)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if res.Message != "Bought 10 units of gold at 100.00" {
		t.Errorf("message = %q", res.Message)
	}
	if !res.Balance.Equal(decimal.NewFromInt(9000)) || !res.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("result = %s/%s", res.Amount, res.Balance)
	}

	res, err = s.Sell("alice", "gold", 10)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if !res.Balance.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("round trip balance = %s, want 10000", res.Balance)
	}
	if !strings.HasPrefix(res.Message, "Sold 10 units") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestTradeErrorsPropagate(t *testing.T) {
	s := newTestSession(t, func(c *Config) {
		c.Human = "poor"
		c.StartingBalance = decimal.NewFromInt(100)
	})

	if _, err := s.Buy("poor", "gold", 5); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	} else if !strings.Contains(err.Error(), "need 500.00") {
		t.Errorf("error should carry the cost: %v", err)
	}
	if _, err := s.Sell("poor", "gold", 1); !errors.Is(err, ledger.ErrInsufficientHoldings) {
		t.Errorf("expected ErrInsufficientHoldings, got %v", err)
	}
	if _, err := s.Buy("ghost", "gold", 1); !errors.Is(err, ledger.ErrUnknownPlayer) {
		t.Errorf("expected ErrUnknownPlayer, got %v", err)
	}
	if _, err := s.Buy("poor", "platinum", 1); !errors.Is(err, market.ErrUnknownCommodity) {
		t.Errorf("expected ErrUnknownCommodity, got %v", err)
	}

	rep, err := s.PlayerReport("poor")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep.Stats.Total != 0 || !rep.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("failed trades changed state: %+v", rep)
	}
}

func TestPricesFixedWithinRound(t *testing.T) {
	s := newTestSession(t, func(c *Config) { c.Human = "alice" })
	s.AdvanceRound()

	a, err := s.Buy("alice", "oil", 1)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	b, err := s.Buy("alice", "oil", 1)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if !a.Trade.Price.Equal(b.Trade.Price) {
		t.Errorf("prices differ within a round: %s vs %s", a.Trade.Price, b.Trade.Price)
	}
	if a.Trade.Round != 1 {
		t.Errorf("trade round = %d, want 1", a.Trade.Round)
	}
}

func TestLeaderboard(t *testing.T) {
	// draw 0.75 lifts every price by half its volatility
	s := newTestSession(t, func(c *Config) { c.Source = entropy.NewSequence(0.75) })
	for _, p := range []ledger.PlayerID{"first", "second", "third"} {
		if err := s.AddPlayer(p, decimal.NewFromInt(1000)); err != nil {
			t.Fatalf("add %s: %v", p, err)
		}
	}
	if err := s.AddPlayer("rich", decimal.NewFromInt(2000)); err != nil {
		t.Fatalf("add rich: %v", err)
	}

	if _, err := s.Buy("second", "gold", 5); err != nil {
		t.Fatalf("buy: %v", err)
	}
	s.AdvanceRound()

	board, err := s.Leaderboard()
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	names := make([]ledger.PlayerID, len(board))
	for i, st := range board {
		names[i] = st.Name
		if i > 0 && board[i-1].Valuation.LessThan(st.Valuation) {
			t.Errorf("not sorted at %d", i)
		}
		if st.Rank != i+1 {
			t.Errorf("rank = %d, want %d", st.Rank, i+1)
		}
	}
	want := []ledger.PlayerID{"rich", "second", "first", "third"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}

	// gold 100 -> 107.50, five units: +37.50 on 1000
	second := board[1]
	if !second.Profit.Equal(decimal.RequireFromString("37.5")) {
		t.Errorf("profit = %s", second.Profit)
	}
	if !second.ProfitPercent.Equal(decimal.RequireFromString("3.75")) {
		t.Errorf("profit percent = %s", second.ProfitPercent)
	}
	if !board[2].ProfitPercent.IsZero() {
		t.Errorf("idle player profit percent = %s", board[2].ProfitPercent)
	}
}

func TestPlayFullWithOpponents(t *testing.T) {
	s := newTestSession(t, func(c *Config) {
		c.MaxRounds = 5
		c.Seed = 99
		c.Source = nil
		c.Human = "Champion"
		c.Opponents = DefaultOpponents(4)
	})

	players := s.Players()
	if len(players) != 5 || players[0] != "Champion" || players[1] != "AI_Conservative_1" || players[4] != "AI_Volatility_4" {
		t.Fatalf("players = %v", players)
	}
	if !s.IsOpponent("AI_Balanced_2") || s.IsOpponent("Champion") {
		t.Error("IsOpponent misreports")
	}

	reports := s.PlayFull()
	if len(reports) != 5 {
		t.Fatalf("played %d rounds, want 5", len(reports))
	}
	if s.State() != StateFinished {
		t.Fatalf("state = %s", s.State())
	}
	for i, rep := range reports {
		if rep.Round != i+1 || len(rep.Turns) != 4 {
			t.Errorf("report %d = round %d with %d turns", i, rep.Round, len(rep.Turns))
		}
	}

	for _, id := range players {
		bal, _ := s.Balance(id)
		if bal.IsNegative() {
			t.Errorf("%s balance negative: %s", id, bal)
		}
		h, _ := s.Holdings(id)
		for c, q := range h {
			if q <= 0 {
				t.Errorf("%s holds %d %s", id, q, c)
			}
		}
	}

	for _, info := range s.Opponents() {
		if info.Stats.Turns != 5 {
			t.Errorf("%s took %d turns, want 5", info.Name, info.Stats.Turns)
		}
		if info.Stats.Trades+info.Stats.Skipped+info.Stats.Idle != info.Stats.Turns {
			t.Errorf("%s stats don't add up: %+v", info.Name, info.Stats)
		}
	}

	last := s.Headlines(1)
	if len(last) != 1 || last[0].Kind != feed.KindGameOver {
		t.Errorf("last headline = %+v", last)
	}

	res, err := s.Results()
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if res.Rounds != 5 || len(res.Standings) != 5 || res.FinishedAt.IsZero() {
		t.Errorf("results = %+v", res)
	}
}

func TestDefaultOpponentsCycle(t *testing.T) {
	ops := DefaultOpponents(6)
	if ops[0].Profile != strategy.Conservative || ops[4].Profile != strategy.Conservative {
		t.Errorf("profiles do not cycle: %+v", ops)
	}
	if ops[5].Name != "AI_Balanced_6" {
		t.Errorf("name = %s", ops[5].Name)
	}
}

func TestConfigFromFile(t *testing.T) {
	fc := config.Default()
	fc.Game.MaxRounds = 4
	fc.Game.StartingBalance = 2500
	fc.Players.Human = "alice"
	fc.Players.AI = []config.AIConfig{
		{Profile: "aggressive"},
		{Name: "Rando", Profile: "mystery"},
	}

	cfg := ConfigFromFile(fc)
	if cfg.MaxRounds != 4 || !cfg.StartingBalance.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("cfg = %d/%s", cfg.MaxRounds, cfg.StartingBalance)
	}
	if len(cfg.Catalog) != 5 || !cfg.Catalog[0].BasePrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if cfg.Human != "alice" || len(cfg.Opponents) != 2 {
		t.Fatalf("players = %s/%+v", cfg.Human, cfg.Opponents)
	}
	if cfg.Opponents[0].Name != "AI_Aggressive_1" {
		t.Errorf("generated name = %s", cfg.Opponents[0].Name)
	}
	if cfg.Opponents[1].Name != "Rando" || cfg.Opponents[1].Profile != strategy.Balanced {
		t.Errorf("unknown profile should fall back to balanced: %+v", cfg.Opponents[1])
	}

	s, err := NewSession(cfg, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if len(s.Players()) != 3 {
		t.Errorf("players = %v", s.Players())
	}
}
