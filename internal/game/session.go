package game

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zappabad/trenchor/internal/entropy"
	"github.com/zappabad/trenchor/internal/feed"
	feedservice "github.com/zappabad/trenchor/internal/feed/service"
	"github.com/zappabad/trenchor/internal/ledger"
	ledgerservice "github.com/zappabad/trenchor/internal/ledger/service"
	ledgerview "github.com/zappabad/trenchor/internal/ledger/view"
	"github.com/zappabad/trenchor/internal/logging"
	"github.com/zappabad/trenchor/internal/market"
	marketservice "github.com/zappabad/trenchor/internal/market/service"
	marketview "github.com/zappabad/trenchor/internal/market/view"
	"github.com/zappabad/trenchor/internal/trader/runner"
)

var hundred = decimal.NewFromInt(100)

// Session is one game. It owns the market, the ledger and every player.
//
// A Session is not safe for concurrent use; callers that share one across
// goroutines serialize access (see internal/api).
type Session struct {
	id  uuid.UUID
	cfg Config
	src entropy.Source
	log logrus.FieldLogger

	market *marketservice.MarketService
	ledger *ledgerservice.Ledger
	feed   *feedservice.FeedService

	round      int
	state      State
	startedAt  time.Time
	finishedAt time.Time
	announced  bool

	opponents []*runner.Runner
}

// NewSession loads the catalog, registers the configured players and returns
// a session in the initializing state.
func NewSession(cfg Config, log logrus.FieldLogger) (*Session, error) {
	if cfg.MaxRounds <= 0 {
		return nil, fmt.Errorf("max rounds must be positive, got %d", cfg.MaxRounds)
	}
	if len(cfg.Catalog) == 0 {
		cfg.Catalog = market.DefaultCatalog()
	}
	src := cfg.Source
	if src == nil {
		src = entropy.NewSeeded(cfg.Seed)
	}

	s := &Session{
		id:        uuid.New(),
		cfg:       cfg,
		src:       src,
		startedAt: time.Now(),
	}
	s.log = logging.OrDiscard(log).WithField("session", s.id.String())

	mkt, err := marketservice.NewMarketService(cfg.Catalog, cfg.MarketConfig, src, s.log)
	if err != nil {
		return nil, err
	}
	s.market = mkt

	ids := make([]market.CommodityID, 0, len(cfg.Catalog))
	for _, c := range mkt.Commodities() {
		ids = append(ids, c.ID)
	}
	s.ledger = ledgerservice.NewLedger(ids, cfg.LedgerConfig, s.log)
	s.feed = feedservice.NewFeedService(cfg.FeedConfig, s.log)

	if cfg.Human != "" {
		if err := s.AddPlayer(cfg.Human, cfg.StartingBalance); err != nil {
			return nil, err
		}
	}
	for _, oc := range cfg.Opponents {
		if err := s.AddOpponent(oc.Name, oc.Profile); err != nil {
			return nil, err
		}
	}

	s.log.WithFields(logrus.Fields{
		"max_rounds":  cfg.MaxRounds,
		"commodities": len(ids),
		"players":     len(s.ledger.Players()),
	}).Info("session created")
	return s, nil
}

// ID identifies the session in logs and the results archive.
func (s *Session) ID() uuid.UUID { return s.id }

// Round is the number of completed advances.
func (s *Session) Round() int { return s.round }

// MaxRounds is the configured game length.
func (s *Session) MaxRounds() int { return s.cfg.MaxRounds }

// State returns the lifecycle stage.
func (s *Session) State() State { return s.state }

// Commodities returns the catalog in display order.
func (s *Session) Commodities() []market.Commodity { return s.market.Commodities() }

// Players returns every player id in registration order.
func (s *Session) Players() []ledger.PlayerID { return s.ledger.Players() }

// AddPlayer registers a player with the given cash.
func (s *Session) AddPlayer(id ledger.PlayerID, balance decimal.Decimal) error {
	if s.state == StateFinished {
		return ErrGameFinished
	}
	return s.ledger.RegisterPlayer(id, balance)
}

// Buy purchases qty units at the current price.
func (s *Session) Buy(id ledger.PlayerID, c market.CommodityID, qty int64) (TradeResult, error) {
	return s.trade(id, ledger.SideBuy, c, qty)
}

// Sell sells qty units at the current price.
func (s *Session) Sell(id ledger.PlayerID, c market.CommodityID, qty int64) (TradeResult, error) {
	return s.trade(id, ledger.SideSell, c, qty)
}

// Submit executes a trade for the AI runners.
func (s *Session) Submit(id ledger.PlayerID, side ledger.Side, c market.CommodityID, qty int64) (ledger.Execution, error) {
	if !s.ledger.Has(id) {
		return ledger.Execution{}, fmt.Errorf("%w: %s", ledger.ErrUnknownPlayer, id)
	}
	price, err := s.market.Price(c)
	if err != nil {
		return ledger.Execution{}, err
	}

	var exec ledger.Execution
	switch side {
	case ledger.SideBuy:
		exec, err = s.ledger.ApplyBuy(id, c, qty, price, s.round)
	case ledger.SideSell:
		exec, err = s.ledger.ApplySell(id, c, qty, price, s.round)
	default:
		err = fmt.Errorf("unknown side %d", side)
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"player":    id,
			"side":      side,
			"commodity": c,
			"quantity":  qty,
			"round":     s.round,
		}).WithError(err).Debug("trade rejected")
		return ledger.Execution{}, err
	}
	return exec, nil
}

func (s *Session) trade(id ledger.PlayerID, side ledger.Side, c market.CommodityID, qty int64) (TradeResult, error) {
	exec, err := s.Submit(id, side, c, qty)
	if err != nil {
		return TradeResult{}, err
	}
	return TradeResult{
		Message: exec.Summary(),
		Amount:  exec.Amount,
		Balance: exec.Balance,
		Trade:   exec.Trade,
	}, nil
}

// AdvanceRound moves the game forward one round and reprices the market.
// It returns false, without changing anything, once the last round has been
// played. Reaching the last round finishes the game.
func (s *Session) AdvanceRound() bool {
	if s.round >= s.cfg.MaxRounds {
		s.finish()
		s.announce()
		return false
	}

	s.round++
	s.market.Advance()
	s.state = StateActive
	s.feed.RoundStarted(s.round, s.cfg.MaxRounds)
	s.feed.Movers(s.market.Snapshot())

	if s.round >= s.cfg.MaxRounds {
		s.finish()
	}

	s.log.WithFields(logrus.Fields{"round": s.round, "state": s.state}).Info("round advanced")
	return true
}

func (s *Session) finish() {
	if s.state == StateFinished {
		return
	}
	s.state = StateFinished
	s.finishedAt = time.Now()
}

// announce publishes the game-over headline once.
func (s *Session) announce() {
	if s.announced || s.state != StateFinished {
		return
	}
	standings, err := s.Leaderboard()
	if err != nil || len(standings) == 0 {
		return
	}
	s.announced = true
	s.feed.GameOver(s.round, string(standings[0].Name), standings[0].Valuation)
	s.log.WithFields(logrus.Fields{
		"round":  s.round,
		"winner": standings[0].Name,
		"total":  standings[0].Valuation.StringFixed(2),
	}).Info("game finished")
}

// MarketSnapshot returns a copy of every quote.
func (s *Session) MarketSnapshot() marketview.MarketSnapshot {
	return s.market.Snapshot()
}

// PriceHistory returns the full price series of one commodity.
func (s *Session) PriceHistory(c market.CommodityID) ([]decimal.Decimal, error) {
	return s.market.History(c)
}

// Balance returns a player's cash.
func (s *Session) Balance(id ledger.PlayerID) (decimal.Decimal, error) {
	return s.ledger.Balance(id)
}

// Holdings returns a copy of a player's non-zero holdings.
func (s *Session) Holdings(id ledger.PlayerID) (map[market.CommodityID]int64, error) {
	return s.ledger.Holdings(id)
}

// PlayerReport returns the detailed view of one player at current prices.
func (s *Session) PlayerReport(id ledger.PlayerID) (ledgerview.PlayerReport, error) {
	return s.ledger.Report(id, s.round, s.market)
}

// Leaderboard ranks every player by valuation, highest first. Ties keep
// registration order.
func (s *Session) Leaderboard() ([]Standing, error) {
	players := s.ledger.Players()
	out := make([]Standing, 0, len(players))
	for _, id := range players {
		v, err := s.ledger.Valuation(id, s.market)
		if err != nil {
			return nil, err
		}
		initial, err := s.ledger.InitialBalance(id)
		if err != nil {
			return nil, err
		}

		profit := v.Total.Sub(initial)
		pct := decimal.Zero
		if initial.IsPositive() {
			pct = profit.Div(initial).Mul(hundred).Round(2)
		}
		out = append(out, Standing{
			Name:          id,
			Balance:       v.Cash,
			Valuation:     v.Total,
			Profit:        profit,
			ProfitPercent: pct,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Valuation.GreaterThan(out[j].Valuation)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// Headlines returns the last n feed entries, oldest first.
func (s *Session) Headlines(n int) []feed.Headline {
	return s.feed.Latest(n)
}

// HeadlinesSince returns feed entries published after the given one.
func (s *Session) HeadlinesSince(after feed.HeadlineID) []feed.Headline {
	return s.feed.Since(after)
}

// Results summarizes the game. It is complete once State is StateFinished.
func (s *Session) Results() (Results, error) {
	standings, err := s.Leaderboard()
	if err != nil {
		return Results{}, err
	}
	return Results{
		SessionID:  s.id,
		Rounds:     s.round,
		StartedAt:  s.startedAt,
		FinishedAt: s.finishedAt,
		Standings:  standings,
	}, nil
}
