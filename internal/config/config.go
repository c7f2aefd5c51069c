// Package config loads the game settings file.
package config

// Config is the top-level settings file.
type Config struct {
	Game    GameConfig    `yaml:"game"`
	Market  MarketConfig  `yaml:"market"`
	Players PlayersConfig `yaml:"players"`
	Log     LogConfig     `yaml:"log"`
	Archive ArchiveConfig `yaml:"archive"`
}

// GameConfig controls the length and economy of a game.
type GameConfig struct {
	MaxRounds       int     `yaml:"max_rounds"`
	StartingBalance float64 `yaml:"starting_balance"`
	Seed            int64   `yaml:"seed"` // 0 picks a seed from the clock
}

// MarketConfig describes the tradable commodities and how prices move.
type MarketConfig struct {
	HistoryWindow int               `yaml:"history_window"`
	FloorRatio    float64           `yaml:"floor_ratio"`
	Commodities   []CommodityConfig `yaml:"commodities"`
}

// CommodityConfig is one catalog entry.
type CommodityConfig struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	BasePrice  float64 `yaml:"base_price"`
	Volatility float64 `yaml:"volatility"`
}

// PlayersConfig lists who takes part.
type PlayersConfig struct {
	Human string     `yaml:"human"`
	AI    []AIConfig `yaml:"ai"`
}

// AIConfig is one computer opponent. An empty name is generated from the profile.
type AIConfig struct {
	Name    string `yaml:"name"`
	Profile string `yaml:"profile"`
}

// LogConfig selects logger level, format and an optional file.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ArchiveConfig points at the results database. An empty path disables it.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}
