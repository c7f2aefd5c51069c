// Package archive keeps a local SQLite log of finished games.
// It records results only; a running game is never saved or resumed.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/zappabad/trenchor/internal/game"
	"github.com/zappabad/trenchor/internal/ledger"
	"github.com/zappabad/trenchor/internal/logging"
)

// GameSummary is one archived game.
type GameSummary struct {
	SessionID   uuid.UUID       `json:"session_id"`
	Rounds      int             `json:"rounds"`
	Players     int             `json:"players"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Winner      ledger.PlayerID `json:"winner"`
	WinnerTotal decimal.Decimal `json:"winner_total"`
}

// DB wraps a SQLite connection for the results archive.
type DB struct {
	conn *sqlx.DB
	log  logrus.FieldLogger
}

// Open opens or creates a SQLite database at the given path.
func Open(path string, log logrus.FieldLogger) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn, log: logging.OrDiscard(log)}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		rounds INTEGER NOT NULL,
		players INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		winner TEXT NOT NULL,
		winner_total TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS standings (
		game_id TEXT NOT NULL REFERENCES games(id),
		rank INTEGER NOT NULL,
		name TEXT NOT NULL,
		balance TEXT NOT NULL,
		valuation TEXT NOT NULL,
		profit TEXT NOT NULL,
		profit_percent TEXT NOT NULL,
		PRIMARY KEY (game_id, rank)
	);

	CREATE INDEX IF NOT EXISTS idx_games_finished ON games(finished_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RecordGame stores the final standings of a game. Recording the same game
// twice replaces the earlier entry.
func (db *DB) RecordGame(ctx context.Context, res game.Results) error {
	if len(res.Standings) == 0 {
		return fmt.Errorf("record game %s: no standings", res.SessionID)
	}
	finished := res.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	id := res.SessionID.String()
	winner := res.Standings[0]

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM standings WHERE game_id = ?", id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO games
		(id, rounds, players, started_at, finished_at, winner, winner_total)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, res.Rounds, len(res.Standings), res.StartedAt.UnixMilli(), finished.UnixMilli(),
		string(winner.Name), winner.Valuation.String(),
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", id, err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO standings
		(game_id, rank, name, balance, valuation, profit, profit_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, st := range res.Standings {
		_, err := stmt.ExecContext(ctx,
			id, st.Rank, string(st.Name), st.Balance.String(), st.Valuation.String(),
			st.Profit.String(), st.ProfitPercent.String(),
		)
		if err != nil {
			return fmt.Errorf("insert standing %s: %w", st.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	db.log.WithFields(logrus.Fields{"game": id, "winner": winner.Name}).Info("game archived")
	return nil
}

type gameRow struct {
	ID          string `db:"id"`
	Rounds      int    `db:"rounds"`
	Players     int    `db:"players"`
	StartedAt   int64  `db:"started_at"`
	FinishedAt  int64  `db:"finished_at"`
	Winner      string `db:"winner"`
	WinnerTotal string `db:"winner_total"`
}

type standingRow struct {
	Rank          int    `db:"rank"`
	Name          string `db:"name"`
	Balance       string `db:"balance"`
	Valuation     string `db:"valuation"`
	Profit        string `db:"profit"`
	ProfitPercent string `db:"profit_percent"`
}

// RecentGames returns the most recently finished games, newest first.
func (db *DB) RecentGames(ctx context.Context, limit int) ([]GameSummary, error) {
	var rows []gameRow
	err := db.conn.SelectContext(ctx, &rows,
		`SELECT id, rounds, players, started_at, finished_at, winner, winner_total
		 FROM games ORDER BY finished_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}

	out := make([]GameSummary, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("game id %q: %w", r.ID, err)
		}
		total, err := decimal.NewFromString(r.WinnerTotal)
		if err != nil {
			return nil, fmt.Errorf("game %s winner total: %w", r.ID, err)
		}
		out = append(out, GameSummary{
			SessionID:   id,
			Rounds:      r.Rounds,
			Players:     r.Players,
			StartedAt:   time.UnixMilli(r.StartedAt),
			FinishedAt:  time.UnixMilli(r.FinishedAt),
			Winner:      ledger.PlayerID(r.Winner),
			WinnerTotal: total,
		})
	}
	return out, nil
}

// Standings returns the archived leaderboard of one game, best first.
func (db *DB) Standings(ctx context.Context, sessionID uuid.UUID) ([]game.Standing, error) {
	var rows []standingRow
	err := db.conn.SelectContext(ctx, &rows,
		`SELECT rank, name, balance, valuation, profit, profit_percent
		 FROM standings WHERE game_id = ? ORDER BY rank`,
		sessionID.String(),
	)
	if err != nil {
		return nil, err
	}

	out := make([]game.Standing, 0, len(rows))
	for _, r := range rows {
		st := game.Standing{Rank: r.Rank, Name: ledger.PlayerID(r.Name)}
		for _, f := range []struct {
			dst *decimal.Decimal
			src string
		}{
			{&st.Balance, r.Balance},
			{&st.Valuation, r.Valuation},
			{&st.Profit, r.Profit},
			{&st.ProfitPercent, r.ProfitPercent},
		} {
			v, err := decimal.NewFromString(f.src)
			if err != nil {
				return nil, fmt.Errorf("standing %s: %w", r.Name, err)
			}
			*f.dst = v
		}
		out = append(out, st)
	}
	return out, nil
}
