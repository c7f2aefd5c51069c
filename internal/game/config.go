package game

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/config"
	"github.com/zappabad/trenchor/internal/entropy"
	feedservice "github.com/zappabad/trenchor/internal/feed/service"
	"github.com/zappabad/trenchor/internal/ledger"
	ledgerservice "github.com/zappabad/trenchor/internal/ledger/service"
	"github.com/zappabad/trenchor/internal/market"
	marketservice "github.com/zappabad/trenchor/internal/market/service"
	"github.com/zappabad/trenchor/internal/trader/runner"
	"github.com/zappabad/trenchor/internal/trader/strategy"
)

// OpponentConfig is one AI player.
type OpponentConfig struct {
	Name    ledger.PlayerID
	Profile strategy.Profile
}

// Config holds configuration for the game.
type Config struct {
	// MaxRounds is the number of rounds before the game finishes.
	MaxRounds int
	// StartingBalance is the cash every configured player starts with.
	StartingBalance decimal.Decimal
	// Seed seeds the random source when Source is nil. Zero picks one from the clock.
	Seed int64
	// Source overrides the random source shared by the market and the AI.
	Source entropy.Source
	// Catalog is the list of commodities to create in the market.
	Catalog []market.Commodity
	// Human is registered first when set.
	Human ledger.PlayerID
	// Opponents are registered after Human, in order.
	Opponents []OpponentConfig

	MarketConfig marketservice.Config
	LedgerConfig ledgerservice.Config
	FeedConfig   feedservice.Config
	RunnerConfig runner.Config
}

// DefaultConfig returns a Config with reasonable defaults and no players.
func DefaultConfig() Config {
	return Config{
		MaxRounds:       config.DefaultMaxRounds,
		StartingBalance: decimal.NewFromInt(10000),
		Catalog:         market.DefaultCatalog(),
		MarketConfig:    marketservice.DefaultConfig(),
		LedgerConfig:    ledgerservice.DefaultConfig(),
		FeedConfig:      feedservice.DefaultConfig(),
		RunnerConfig:    runner.DefaultConfig(),
	}
}

// OpponentName builds the display name of the n-th AI player (1-based),
// e.g. "AI_Aggressive_3".
func OpponentName(p strategy.Profile, n int) ledger.PlayerID {
	return ledger.PlayerID(fmt.Sprintf("AI_%s_%d", p.Title(), n))
}

// DefaultOpponents returns n AI players cycling through the profile rotation.
func DefaultOpponents(n int) []OpponentConfig {
	rot := strategy.Rotation()
	out := make([]OpponentConfig, 0, n)
	for i := 0; i < n; i++ {
		p := rot[i%len(rot)]
		out = append(out, OpponentConfig{Name: OpponentName(p, i+1), Profile: p})
	}
	return out
}

// ConfigFromFile converts a settings file into a game Config.
// Unknown AI profiles fall back to balanced.
func ConfigFromFile(fc *config.Config) Config {
	cfg := DefaultConfig()

	cfg.MaxRounds = fc.Game.MaxRounds
	cfg.StartingBalance = decimal.NewFromFloat(fc.Game.StartingBalance).Round(market.PriceDecimals)
	cfg.Seed = fc.Game.Seed
	cfg.MarketConfig.HistoryWindow = fc.Market.HistoryWindow
	cfg.MarketConfig.FloorRatio = fc.Market.FloorRatio

	if len(fc.Market.Commodities) > 0 {
		cfg.Catalog = make([]market.Commodity, 0, len(fc.Market.Commodities))
		for _, cm := range fc.Market.Commodities {
			cfg.Catalog = append(cfg.Catalog, market.Commodity{
				ID:         market.CommodityID(cm.ID),
				Name:       cm.Name,
				BasePrice:  decimal.NewFromFloat(cm.BasePrice),
				Volatility: cm.Volatility,
			})
		}
	}

	cfg.Human = ledger.PlayerID(fc.Players.Human)
	for i, ai := range fc.Players.AI {
		p, _ := strategy.ProfileByName(ai.Profile)
		name := ledger.PlayerID(ai.Name)
		if name == "" {
			name = OpponentName(p, i+1)
		}
		cfg.Opponents = append(cfg.Opponents, OpponentConfig{Name: name, Profile: p})
	}

	return cfg
}
