package service

import "fmt"

// Config holds configuration for the market service.
type Config struct {
	// HistoryWindow is how many recent prices Snapshot reports per commodity.
	// Traders need at least two to see a move.
	HistoryWindow int
	// FloorRatio is the share of the previous price a new price may not fall below.
	FloorRatio float64
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		HistoryWindow: 5,
		FloorRatio:    0.5,
	}
}

// Validate rejects settings the market cannot run with.
func (c Config) Validate() error {
	if c.HistoryWindow < 2 {
		return fmt.Errorf("history window must be >= 2, got %d", c.HistoryWindow)
	}
	if c.FloorRatio <= 0 || c.FloorRatio > 1 {
		return fmt.Errorf("floor ratio must be in (0, 1], got %v", c.FloorRatio)
	}
	return nil
}
