package service

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/feed"
	marketview "github.com/zappabad/trenchor/internal/market/view"
)

func TestPublishAssignsIDs(t *testing.T) {
	s := NewFeedService(DefaultConfig(), nil)
	a := s.Publish(feed.Headline{Text: "a"})
	b := s.Publish(feed.Headline{Text: "b"})

	if a.ID == 0 || b.ID <= a.ID {
		t.Fatalf("ids not increasing: %d, %d", a.ID, b.ID)
	}
	if a.Time.IsZero() {
		t.Error("time should be set")
	}
	if got := s.Since(a.ID); len(got) != 1 || got[0].Text != "b" {
		t.Errorf("since = %+v", got)
	}
}

func TestMovers(t *testing.T) {
	s := NewFeedService(DefaultConfig(), nil)
	snap := marketview.MarketSnapshot{
		Round: 2,
		Quotes: []marketview.Quote{
			{ID: "gold", Name: "Gold", Price: decimal.NewFromInt(112), ChangePercent: decimal.NewFromInt(12), Change: "12.00%"},
			{ID: "oil", Name: "Oil", Price: decimal.NewFromInt(79), ChangePercent: decimal.RequireFromString("-1.25"), Change: "-1.25%"},
			{ID: "wheat", Name: "Wheat", Price: decimal.NewFromInt(27), ChangePercent: decimal.NewFromInt(-10), Change: "-10.00%"},
		},
	}

	if n := s.Movers(snap); n != 2 {
		t.Fatalf("published %d movers, want 2", n)
	}
	got := s.Latest(2)
	if got[0].Commodity != "gold" || !strings.Contains(got[0].Text, "surges") {
		t.Errorf("first mover = %+v", got[0])
	}
	if got[1].Commodity != "wheat" || !strings.Contains(got[1].Text, "plunges") {
		t.Errorf("second mover = %+v", got[1])
	}
	if got[1].Kind != feed.KindMover || got[1].Round != 2 {
		t.Errorf("mover kind/round = %s/%d", got[1].Kind, got[1].Round)
	}
}

func TestFeedBounded(t *testing.T) {
	s := NewFeedService(Config{TapeSize: 2}, nil)
	s.RoundStarted(1, 10)
	s.Trade(1, "AI bought")
	s.GameOver(10, "alice", decimal.NewFromInt(12000))

	if s.Count() != 2 {
		t.Fatalf("count = %d, want 2", s.Count())
	}
	last := s.Latest(1)[0]
	if last.Kind != feed.KindGameOver || !strings.Contains(last.Text, "alice wins with $12000.00") {
		t.Errorf("last = %+v", last)
	}
}
