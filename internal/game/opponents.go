package game

import (
	"github.com/zappabad/trenchor/internal/ledger"
	"github.com/zappabad/trenchor/internal/trader"
	"github.com/zappabad/trenchor/internal/trader/runner"
	"github.com/zappabad/trenchor/internal/trader/strategy"
)

// AddOpponent registers an AI player with the configured starting balance.
// It trades through the session like any other player.
func (s *Session) AddOpponent(id ledger.PlayerID, p strategy.Profile) error {
	if err := s.AddPlayer(id, s.cfg.StartingBalance); err != nil {
		return err
	}
	h := strategy.NewHeuristic(p, s.src)
	r := runner.NewRunner(s.cfg.RunnerConfig, id, p, h, s, s, s, s.log)
	s.opponents = append(s.opponents, r)
	return nil
}

// Opponents describes every AI player, in registration order.
func (s *Session) Opponents() []runner.Info {
	out := make([]runner.Info, 0, len(s.opponents))
	for _, r := range s.opponents {
		out = append(out, r.Info())
	}
	return out
}

// IsOpponent reports whether id is played by the AI.
func (s *Session) IsOpponent(id ledger.PlayerID) bool {
	for _, r := range s.opponents {
		if r.ID() == id {
			return true
		}
	}
	return false
}

// PlayRound advances the market and gives every AI player one turn, in
// registration order. It returns false once the game is over.
func (s *Session) PlayRound() (RoundReport, bool) {
	if !s.AdvanceRound() {
		return RoundReport{Round: s.round, Market: s.market.Snapshot()}, false
	}

	rep := RoundReport{
		Round:  s.round,
		Market: s.market.Snapshot(),
		Turns:  make([]trader.Event, 0, len(s.opponents)),
	}
	for _, r := range s.opponents {
		ev := r.TakeTurn()
		if ev.Type == trader.EventTraded {
			s.feed.Trade(s.round, ev.Message)
		}
		rep.Turns = append(rep.Turns, ev)
	}

	s.announce()
	return rep, true
}

// PlayFull plays every remaining round and returns the reports in order.
func (s *Session) PlayFull() []RoundReport {
	var reports []RoundReport
	for {
		rep, ok := s.PlayRound()
		if !ok {
			return reports
		}
		reports = append(reports, rep)
	}
}
