// Command trenchor plays a game between AI traders without a terminal UI and
// prints the market, the trades and the standings after every round.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zappabad/trenchor/internal/archive"
	"github.com/zappabad/trenchor/internal/config"
	"github.com/zappabad/trenchor/internal/game"
	"github.com/zappabad/trenchor/internal/logging"
	marketview "github.com/zappabad/trenchor/internal/market/view"
	"github.com/zappabad/trenchor/internal/trader"
)

type options struct {
	configPath string
	rounds     int
	ai         int
	seed       int64
	history    int
	jsonOut    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to the YAML settings file")
	flag.IntVar(&opts.rounds, "rounds", 0, "number of rounds (overrides game.max_rounds)")
	flag.IntVar(&opts.ai, "ai", -1, "number of AI traders cycling the profiles (overrides players.ai)")
	flag.Int64Var(&opts.seed, "seed", 0, "random seed (overrides game.seed)")
	flag.IntVar(&opts.history, "history", 5, "archived games to list after the game")
	flag.BoolVar(&opts.jsonOut, "json", false, "print the final results as JSON")
	flag.Parse()

	fc, err := config.LoadAndValidate(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(fc.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(os.Stdout, fc, opts, log); err != nil {
		log.WithError(err).Error("game failed")
		os.Exit(1)
	}
}

func newLogger(lc config.LogConfig) (*logrus.Logger, error) {
	var out io.Writer = os.Stderr
	if lc.File != "" {
		f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
	}
	return logging.New(logging.Config{Level: lc.Level, Format: lc.Format, Output: out})
}

func run(w io.Writer, fc *config.Config, opts options, log logrus.FieldLogger) error {
	cfg := game.ConfigFromFile(fc)
	cfg.Human = ""
	if opts.rounds > 0 {
		cfg.MaxRounds = opts.rounds
	}
	if opts.ai >= 0 {
		cfg.Opponents = game.DefaultOpponents(opts.ai)
	}
	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}

	sess, err := game.NewSession(cfg, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "TRENCHOR: %d rounds, %d traders\n\n", sess.MaxRounds(), len(sess.Players()))
	printMarket(w, sess.MarketSnapshot())

	for {
		rep, ok := sess.PlayRound()
		if !ok {
			break
		}
		fmt.Fprintf(w, "\n=== Round %d/%d ===\n", rep.Round, sess.MaxRounds())
		printMarket(w, rep.Market)
		printTurns(w, rep.Turns)

		board, err := sess.Leaderboard()
		if err != nil {
			return err
		}
		printStandings(w, board)
	}

	res, err := sess.Results()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n=== Final results ===\n")
	if opts.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
	} else {
		printStandings(w, res.Standings)
	}

	if fc.Archive.Path == "" {
		return nil
	}
	return archiveResults(w, fc.Archive.Path, res, opts.history, log)
}

func archiveResults(w io.Writer, path string, res game.Results, history int, log logrus.FieldLogger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := archive.Open(path, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RecordGame(ctx, res); err != nil {
		return err
	}
	if history <= 0 {
		return nil
	}

	games, err := db.RecentGames(ctx, history)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n=== Recent games ===\n")
	for _, g := range games {
		fmt.Fprintf(w, "%s  %2d rounds  %d players  winner %s ($%s)\n",
			g.FinishedAt.Local().Format("2006-01-02 15:04"), g.Rounds, g.Players, g.Winner, g.WinnerTotal.StringFixed(2))
	}
	return nil
}

func printMarket(w io.Writer, snap marketview.MarketSnapshot) {
	for _, q := range snap.Quotes {
		fmt.Fprintf(w, "  %-10s $%10s  %8s\n", q.Name, q.Price.StringFixed(2), q.Change)
	}
}

func printTurns(w io.Writer, turns []trader.Event) {
	var traded []string
	for _, ev := range turns {
		if ev.Type == trader.EventTraded {
			traded = append(traded, ev.Message)
		}
	}
	if len(traded) == 0 {
		fmt.Fprintln(w, "  (no AI trades)")
		return
	}
	fmt.Fprintln(w, "  "+strings.Join(traded, "\n  "))
}

func printStandings(w io.Writer, standings []game.Standing) {
	for _, st := range standings {
		fmt.Fprintf(w, "  %d. %-24s $%12s  %8s%%\n", st.Rank, st.Name, st.Valuation.StringFixed(2), st.ProfitPercent.StringFixed(2))
	}
}
