package runner

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zappabad/trenchor/internal/ledger"
	"github.com/zappabad/trenchor/internal/logging"
	"github.com/zappabad/trenchor/internal/trader"
	"github.com/zappabad/trenchor/internal/trader/strategy"
)

// Info describes an AI trader for display.
type Info struct {
	Name    ledger.PlayerID  `json:"name"`
	Profile strategy.Profile `json:"profile"`
	Stats   trader.Stats     `json:"stats"`
	Recent  []trader.Event   `json:"-"`
}

// Runner plays turns for one AI player. It is driven by the caller, once per round.
type Runner struct {
	cfg      Config
	id       ledger.PlayerID
	profile  strategy.Profile
	strategy strategy.Strategy
	mr       strategy.MarketReader
	pr       strategy.PortfolioReader
	sender   strategy.OrderSender
	log      logrus.FieldLogger

	stats  trader.Stats
	recent []trader.Event
}

// NewRunner creates a new Runner.
func NewRunner(
	cfg Config,
	id ledger.PlayerID,
	profile strategy.Profile,
	strat strategy.Strategy,
	mr strategy.MarketReader,
	pr strategy.PortfolioReader,
	sender strategy.OrderSender,
	log logrus.FieldLogger,
) *Runner {
	if cfg.RecentEvents <= 0 {
		cfg.RecentEvents = DefaultConfig().RecentEvents
	}

	return &Runner{
		cfg:      cfg,
		id:       id,
		profile:  profile,
		strategy: strat,
		mr:       mr,
		pr:       pr,
		sender:   sender,
		log:      logging.OrDiscard(log).WithFields(logrus.Fields{"trader": id, "profile": profile.Name}),
	}
}

// ID returns the player this runner trades for.
func (r *Runner) ID() ledger.PlayerID { return r.id }

// TakeTurn reads the market and the player's portfolio, asks the strategy for
// an intent and submits it. A rejected trade costs the turn and is not an error.
func (r *Runner) TakeTurn() trader.Event {
	snap := r.mr.MarketSnapshot()
	ev := trader.Event{Trader: r.id, Round: snap.Round, Type: trader.EventIdle}

	pf, err := r.portfolio()
	if err != nil {
		ev.Type = trader.EventSkipped
		ev.Message = err.Error()
		return r.finish(ev)
	}

	intent, ok := r.strategy.Decide(snap, pf)
	if !ok {
		return r.finish(ev)
	}
	ev.Intent = &intent

	exec, err := r.sender.Submit(r.id, intent.Side, intent.Commodity, intent.Quantity)
	if err != nil {
		ev.Type = trader.EventSkipped
		ev.Message = err.Error()
		return r.finish(ev)
	}

	ev.Type = trader.EventTraded
	ev.Trade = &exec.Trade
	ev.Message = fmt.Sprintf("%s: %s", r.id, exec.Summary())
	return r.finish(ev)
}

func (r *Runner) portfolio() (trader.Portfolio, error) {
	bal, err := r.pr.Balance(r.id)
	if err != nil {
		return trader.Portfolio{}, err
	}
	holdings, err := r.pr.Holdings(r.id)
	if err != nil {
		return trader.Portfolio{}, err
	}
	return trader.Portfolio{Balance: bal, Holdings: holdings}, nil
}

func (r *Runner) finish(ev trader.Event) trader.Event {
	r.stats.Turns++
	switch ev.Type {
	case trader.EventTraded:
		r.stats.Trades++
	case trader.EventSkipped:
		r.stats.Skipped++
	case trader.EventIdle:
		r.stats.Idle++
	}

	r.recent = append(r.recent, ev)
	if over := len(r.recent) - r.cfg.RecentEvents; over > 0 {
		r.recent = append(r.recent[:0:0], r.recent[over:]...)
	}

	entry := r.log.WithFields(logrus.Fields{"round": ev.Round, "outcome": ev.Type})
	if ev.Message != "" {
		entry = entry.WithField("detail", ev.Message)
	}
	entry.Debug("ai turn")
	return ev
}

// Info returns the trader's name, profile and counters.
func (r *Runner) Info() Info {
	recent := make([]trader.Event, len(r.recent))
	copy(recent, r.recent)
	return Info{
		Name:    r.id,
		Profile: r.profile,
		Stats:   r.stats,
		Recent:  recent,
	}
}
