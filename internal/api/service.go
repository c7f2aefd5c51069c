package api

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zappabad/trenchor/internal/feed"
	"github.com/zappabad/trenchor/internal/game"
	"github.com/zappabad/trenchor/internal/ledger"
	ledgerview "github.com/zappabad/trenchor/internal/ledger/view"
	"github.com/zappabad/trenchor/internal/logging"
	"github.com/zappabad/trenchor/internal/market"
	marketview "github.com/zappabad/trenchor/internal/market/view"
	"github.com/zappabad/trenchor/internal/trader/runner"
)

var ErrClosed = errors.New("service closed")

// Update tells subscribers that the session changed.
type Update struct {
	Round int
	State game.State
}

// View is everything a screen needs in one consistent read.
type View struct {
	Round       int
	MaxRounds   int
	State       game.State
	Market      marketview.MarketSnapshot
	Histories   map[market.CommodityID][]decimal.Decimal
	Leaderboard []game.Standing
	Report      *ledgerview.PlayerReport // nil without a human player
	Opponents   []runner.Info
	Headlines   []feed.Headline
}

// FinishFunc receives the results once, when the game finishes.
type FinishFunc func(game.Results)

// Service serializes every call into a game.Session through one goroutine.
type Service struct {
	cfg    Config
	log    logrus.FieldLogger
	human  ledger.PlayerID
	finish FinishFunc

	sess     *game.Session
	reported bool

	cmdCh    chan any
	updateCh chan Update

	closed  chan struct{}
	closeMu sync.Mutex
	wg      sync.WaitGroup

	droppedUpdates atomic.Int64
}

// NewService takes ownership of sess. human may be empty; onFinish may be nil.
func NewService(cfg Config, sess *game.Session, human ledger.PlayerID, onFinish FinishFunc, log logrus.FieldLogger) *Service {
	cfg = cfg.withDefaults()

	s := &Service{
		cfg:      cfg,
		log:      logging.OrDiscard(log),
		human:    human,
		finish:   onFinish,
		sess:     sess,
		cmdCh:    make(chan any, cfg.CommandBuffer),
		updateCh: make(chan Update, cfg.UpdateBuffer),
		closed:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.sessionLoop()
	return s
}

// Close stops the session loop. cmdCh is never closed, so callers racing
// Close see ErrClosed instead of a send on a closed channel.
func (s *Service) Close() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()

	select {
	case <-s.closed:
		return
	default:
		close(s.closed)
	}
	s.wg.Wait()
}

func (s *Service) Updates() <-chan Update { return s.updateCh }
func (s *Service) DroppedUpdates() int64  { return s.droppedUpdates.Load() }

type tradeCmd struct {
	side      ledger.Side
	commodity market.CommodityID
	qty       int64
	reply     chan tradeResp
}
type tradeResp struct {
	result game.TradeResult
	err    error
}
type advanceCmd struct {
	reply chan advanceResp
}
type advanceResp struct {
	report game.RoundReport
	ok     bool
}
type viewCmd struct {
	reply chan View
}

// Buy trades for the human player.
func (s *Service) Buy(ctx context.Context, c market.CommodityID, qty int64) (game.TradeResult, error) {
	return s.trade(ctx, ledger.SideBuy, c, qty)
}

// Sell trades for the human player.
func (s *Service) Sell(ctx context.Context, c market.CommodityID, qty int64) (game.TradeResult, error) {
	return s.trade(ctx, ledger.SideSell, c, qty)
}

func (s *Service) trade(ctx context.Context, side ledger.Side, c market.CommodityID, qty int64) (game.TradeResult, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return game.TradeResult{}, err
	}

	reply := make(chan tradeResp, 1)
	if err := s.sendCmd(ctx, tradeCmd{side: side, commodity: c, qty: qty, reply: reply}); err != nil {
		return game.TradeResult{}, err
	}

	select {
	case r := <-reply:
		return r.result, r.err
	case <-ctx.Done():
		return game.TradeResult{}, ctx.Err()
	case <-s.closed:
		return game.TradeResult{}, ErrClosed
	}
}

// Advance plays one round. ok is false once the game is over.
func (s *Service) Advance(ctx context.Context) (report game.RoundReport, ok bool, err error) {
	if err := s.ensureOpen(ctx); err != nil {
		return game.RoundReport{}, false, err
	}

	reply := make(chan advanceResp, 1)
	if err := s.sendCmd(ctx, advanceCmd{reply: reply}); err != nil {
		return game.RoundReport{}, false, err
	}

	select {
	case r := <-reply:
		return r.report, r.ok, nil
	case <-ctx.Done():
		return game.RoundReport{}, false, ctx.Err()
	case <-s.closed:
		return game.RoundReport{}, false, ErrClosed
	}
}

// View returns a consistent copy of the session state.
func (s *Service) View(ctx context.Context) (View, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return View{}, err
	}

	reply := make(chan View, 1)
	if err := s.sendCmd(ctx, viewCmd{reply: reply}); err != nil {
		return View{}, err
	}

	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-s.closed:
		return View{}, ErrClosed
	}
}

func (s *Service) ensureOpen(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return ErrClosed
	default:
		return nil
	}
}

func (s *Service) sendCmd(ctx context.Context, cmd any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return ErrClosed
	case s.cmdCh <- cmd:
		return nil
	}
}

// owns the session; nothing else touches it
func (s *Service) sessionLoop() {
	defer s.wg.Done()
	defer close(s.updateCh)

	for {
		var cmd any
		select {
		case <-s.closed:
			return
		case cmd = <-s.cmdCh:
		}

		switch c := cmd.(type) {
		case tradeCmd:
			var resp tradeResp
			if c.side == ledger.SideBuy {
				resp.result, resp.err = s.sess.Buy(s.human, c.commodity, c.qty)
			} else {
				resp.result, resp.err = s.sess.Sell(s.human, c.commodity, c.qty)
			}
			c.reply <- resp
			if resp.err == nil {
				s.publish()
			}

		case advanceCmd:
			rep, ok := s.sess.PlayRound()
			s.checkFinished()
			c.reply <- advanceResp{report: rep, ok: ok}
			s.publish()

		case viewCmd:
			c.reply <- s.buildView()
		}
	}
}

func (s *Service) checkFinished() {
	if s.reported || s.sess.State() != game.StateFinished {
		return
	}
	s.reported = true
	if s.finish == nil {
		return
	}
	res, err := s.sess.Results()
	if err != nil {
		s.log.WithError(err).Warn("collect results")
		return
	}
	s.finish(res)
}

func (s *Service) buildView() View {
	v := View{
		Round:     s.sess.Round(),
		MaxRounds: s.sess.MaxRounds(),
		State:     s.sess.State(),
		Market:    s.sess.MarketSnapshot(),
		Opponents: s.sess.Opponents(),
		Headlines: s.sess.Headlines(s.cfg.FeedSize),
		Histories: make(map[market.CommodityID][]decimal.Decimal),
	}

	for _, c := range s.sess.Commodities() {
		h, err := s.sess.PriceHistory(c.ID)
		if err != nil {
			s.log.WithError(err).WithField("commodity", c.ID).Warn("price history")
			continue
		}
		v.Histories[c.ID] = h
	}

	board, err := s.sess.Leaderboard()
	if err != nil {
		s.log.WithError(err).Warn("build leaderboard")
	}
	v.Leaderboard = board

	if s.human != "" {
		rep, err := s.sess.PlayerReport(s.human)
		if err != nil {
			s.log.WithError(err).Warn("build player report")
		} else {
			v.Report = &rep
		}
	}
	return v
}

func (s *Service) publish() {
	u := Update{Round: s.sess.Round(), State: s.sess.State()}
	select {
	case s.updateCh <- u:
	default:
		s.droppedUpdates.Add(1)
	}
}
