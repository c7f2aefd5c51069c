package config

import "github.com/zappabad/trenchor/internal/market"

// Default values for optional configuration fields.
const (
	DefaultMaxRounds       = 10
	DefaultStartingBalance = 10000.0
	DefaultHistoryWindow   = 5
	DefaultFloorRatio      = 0.5
	MinBasePrice           = 0.01
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// DefaultOpponents is the profile line-up used when the file names no AI players.
var DefaultOpponents = []string{"conservative", "balanced", "aggressive", "volatility"}

// Default returns the settings used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Game.MaxRounds == 0 {
		c.Game.MaxRounds = DefaultMaxRounds
	}
	if c.Game.StartingBalance == 0 {
		c.Game.StartingBalance = DefaultStartingBalance
	}

	if c.Market.HistoryWindow == 0 {
		c.Market.HistoryWindow = DefaultHistoryWindow
	}
	if c.Market.FloorRatio == 0 {
		c.Market.FloorRatio = DefaultFloorRatio
	}
	if len(c.Market.Commodities) == 0 {
		for _, cm := range market.DefaultCatalog() {
			c.Market.Commodities = append(c.Market.Commodities, CommodityConfig{
				ID:         string(cm.ID),
				Name:       cm.Name,
				BasePrice:  cm.BasePrice.InexactFloat64(),
				Volatility: cm.Volatility,
			})
		}
	}

	// nil means the key was absent; an explicit empty list keeps a solo game
	if c.Players.AI == nil {
		for _, p := range DefaultOpponents {
			c.Players.AI = append(c.Players.AI, AIConfig{Profile: p})
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
