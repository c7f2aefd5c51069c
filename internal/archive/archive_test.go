package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/entropy"
	"github.com/zappabad/trenchor/internal/game"
	"github.com/zappabad/trenchor/internal/ledger"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "results.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func results(finished time.Time, names ...ledger.PlayerID) game.Results {
	res := game.Results{
		SessionID:  uuid.New(),
		Rounds:     10,
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: finished,
	}
	for i, n := range names {
		v := decimal.NewFromInt(int64(12000 - i*1000))
		res.Standings = append(res.Standings, game.Standing{
			Rank:          i + 1,
			Name:          n,
			Balance:       v,
			Valuation:     v,
			Profit:        v.Sub(decimal.NewFromInt(10000)),
			ProfitPercent: v.Sub(decimal.NewFromInt(10000)).Div(decimal.NewFromInt(100)),
		})
	}
	return res
}

func TestRecordAndList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := results(base, "alice", "AI_Balanced_1")
	newer := results(base.Add(time.Hour), "AI_Aggressive_2", "bob", "carol")

	for _, r := range []game.Results{older, newer} {
		if err := db.RecordGame(ctx, r); err != nil {
			t.Fatalf("RecordGame: %v", err)
		}
	}

	games, err := db.RecentGames(ctx, 10)
	if err != nil {
		t.Fatalf("RecentGames: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}
	if games[0].SessionID != newer.SessionID || games[0].Winner != "AI_Aggressive_2" {
		t.Errorf("newest game = %+v", games[0])
	}
	if games[0].Players != 3 || games[0].Rounds != 10 {
		t.Errorf("summary = %+v", games[0])
	}
	if !games[0].WinnerTotal.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("winner total = %s", games[0].WinnerTotal)
	}
	if !games[1].FinishedAt.Equal(base) {
		t.Errorf("finished at = %s, want %s", games[1].FinishedAt, base)
	}

	limited, err := db.RecentGames(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit 1: %d games, err %v", len(limited), err)
	}
}

func TestStandingsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	res := results(time.Now(), "alice", "bob")

	if err := db.RecordGame(ctx, res); err != nil {
		t.Fatalf("RecordGame: %v", err)
	}
	// recording again replaces, not duplicates
	if err := db.RecordGame(ctx, res); err != nil {
		t.Fatalf("RecordGame again: %v", err)
	}

	got, err := db.Standings(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("Standings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d standings, want 2", len(got))
	}
	for i, st := range got {
		want := res.Standings[i]
		if st.Rank != want.Rank || st.Name != want.Name {
			t.Errorf("standing %d = %s/%d", i, st.Name, st.Rank)
		}
		if !st.Valuation.Equal(want.Valuation) || !st.ProfitPercent.Equal(want.ProfitPercent) {
			t.Errorf("standing %d values = %s/%s", i, st.Valuation, st.ProfitPercent)
		}
	}

	games, _ := db.RecentGames(ctx, 10)
	if len(games) != 1 {
		t.Errorf("got %d games after re-record, want 1", len(games))
	}
}

func TestRecordRejectsEmpty(t *testing.T) {
	db := openTestDB(t)
	if err := db.RecordGame(context.Background(), game.Results{SessionID: uuid.New()}); err == nil {
		t.Fatal("expected an error without standings")
	}
}

func TestRecordPlayedGame(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	cfg := game.DefaultConfig()
	cfg.MaxRounds = 3
	cfg.Source = entropy.NewSequence(0.2, 0.6, 0.9)
	cfg.Opponents = game.DefaultOpponents(3)
	sess, err := game.NewSession(cfg, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	sess.PlayFull()

	res, err := sess.Results()
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if err := db.RecordGame(ctx, res); err != nil {
		t.Fatalf("RecordGame: %v", err)
	}

	got, err := db.Standings(ctx, sess.ID())
	if err != nil {
		t.Fatalf("Standings: %v", err)
	}
	if len(got) != 3 || got[0].Name != res.Standings[0].Name {
		t.Errorf("standings = %+v", got)
	}
}
