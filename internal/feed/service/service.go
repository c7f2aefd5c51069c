package service

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zappabad/trenchor/internal/feed"
	feedview "github.com/zappabad/trenchor/internal/feed/view"
	"github.com/zappabad/trenchor/internal/logging"
	marketview "github.com/zappabad/trenchor/internal/market/view"
)

// FeedService publishes game headlines into a bounded view.
type FeedService struct {
	cfg  Config
	view *feedview.FeedView
	log  logrus.FieldLogger
	now  func() time.Time

	idGen atomic.Int64
}

// NewFeedService creates a new FeedService.
func NewFeedService(cfg Config, log logrus.FieldLogger) *FeedService {
	if cfg.TapeSize <= 0 {
		cfg.TapeSize = DefaultConfig().TapeSize
	}
	if cfg.MoverThreshold <= 0 {
		cfg.MoverThreshold = DefaultConfig().MoverThreshold
	}

	return &FeedService{
		cfg:  cfg,
		view: feedview.NewFeedView(cfg.TapeSize),
		log:  logging.OrDiscard(log),
		now:  time.Now,
	}
}

// Publish stores a headline. Sets ID and Time if missing.
func (s *FeedService) Publish(h feed.Headline) feed.Headline {
	if h.ID == 0 {
		h.ID = feed.HeadlineID(s.idGen.Add(1))
	}
	if h.Time.IsZero() {
		h.Time = s.now()
	}
	s.view.Apply(h)

	s.log.WithFields(logrus.Fields{"round": h.Round, "kind": h.Kind}).Debug(h.Text)
	return h
}

// RoundStarted announces a new round.
func (s *FeedService) RoundStarted(round, maxRounds int) {
	s.Publish(feed.Headline{
		Round: round,
		Kind:  feed.KindRound,
		Text:  fmt.Sprintf("Round %d/%d begins", round, maxRounds),
	})
}

// Movers publishes one headline per commodity whose last change reached the
// mover threshold. It returns how many were published.
func (s *FeedService) Movers(snap marketview.MarketSnapshot) int {
	threshold := decimal.NewFromFloat(s.cfg.MoverThreshold)
	n := 0
	for _, q := range snap.Quotes {
		if q.ChangePercent.Abs().LessThan(threshold) {
			continue
		}
		verb := "surges"
		if q.ChangePercent.IsNegative() {
			verb = "plunges"
		}
		s.Publish(feed.Headline{
			Round:     snap.Round,
			Kind:      feed.KindMover,
			Commodity: q.ID,
			Text:      fmt.Sprintf("%s %s %s to $%s", q.Name, verb, q.Change, q.Price.StringFixed(2)),
			Severity:  1,
		})
		n++
	}
	return n
}

// Trade reports an executed trade.
func (s *FeedService) Trade(round int, text string) {
	s.Publish(feed.Headline{Round: round, Kind: feed.KindTrade, Text: text})
}

// GameOver announces the winner.
func (s *FeedService) GameOver(round int, winner string, total decimal.Decimal) {
	s.Publish(feed.Headline{
		Round:    round,
		Kind:     feed.KindGameOver,
		Text:     fmt.Sprintf("Game over after %d rounds: %s wins with $%s", round, winner, total.StringFixed(2)),
		Severity: 2,
	})
}

// Latest returns the last n headlines, oldest first.
func (s *FeedService) Latest(n int) []feed.Headline {
	return s.view.Latest(n)
}

// Since returns the retained headlines published after the given one.
func (s *FeedService) Since(after feed.HeadlineID) []feed.Headline {
	return s.view.Since(after)
}

// Count returns the number of retained headlines.
func (s *FeedService) Count() int {
	return s.view.Count()
}
