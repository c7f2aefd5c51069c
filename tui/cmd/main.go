package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/zappabad/trenchor/internal/api"
	"github.com/zappabad/trenchor/internal/archive"
	"github.com/zappabad/trenchor/internal/config"
	"github.com/zappabad/trenchor/internal/game"
	"github.com/zappabad/trenchor/internal/ledger"
	"github.com/zappabad/trenchor/internal/logging"
	"github.com/zappabad/trenchor/tui"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML settings file")
	name := flag.String("name", "", "your player name (overrides players.human)")
	spectate := flag.Bool("spectate", false, "watch the AI players without a seat")
	flag.Parse()

	if err := run(*configPath, *name, *spectate); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, name string, spectate bool) error {
	fc, err := config.LoadAndValidate(configPath)
	if err != nil {
		return err
	}

	// The alt screen owns stdout, so logs always go to a file.
	logFile := fc.Log.File
	if logFile == "" {
		logFile = "trenchor.log"
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	log, err := logging.New(logging.Config{Level: fc.Log.Level, Format: fc.Log.Format, Output: f})
	if err != nil {
		return err
	}

	cfg := game.ConfigFromFile(fc)
	switch {
	case spectate:
		cfg.Human = ""
	case name != "":
		cfg.Human = ledger.PlayerID(name)
	case cfg.Human == "":
		cfg.Human = "Player"
	}

	sess, err := game.NewSession(cfg, log)
	if err != nil {
		return err
	}

	var onFinish api.FinishFunc
	if fc.Archive.Path != "" {
		db, err := archive.Open(fc.Archive.Path, log)
		if err != nil {
			return err
		}
		defer db.Close()
		onFinish = recordResults(db, log)
	}

	svc := api.NewService(api.Config{FeedSize: 100}, sess, cfg.Human, onFinish, log)
	defer svc.Close()

	log.WithFields(logrus.Fields{
		"session": sess.ID(),
		"rounds":  cfg.MaxRounds,
		"human":   cfg.Human,
		"ai":      len(cfg.Opponents),
	}).Info("game started")

	model := tui.NewModel(svc, cfg.Human, sess.Commodities())
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func recordResults(db *archive.DB, log logrus.FieldLogger) api.FinishFunc {
	return func(res game.Results) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.RecordGame(ctx, res); err != nil {
			log.WithError(err).Error("archive results")
			return
		}
		log.WithField("session", res.SessionID).Info("results archived")
	}
}
