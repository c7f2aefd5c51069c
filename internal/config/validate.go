package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Game.MaxRounds < 1 {
		return fmt.Errorf("game.max_rounds must be >= 1, got %d", c.Game.MaxRounds)
	}
	if c.Game.StartingBalance < 0 {
		return fmt.Errorf("game.starting_balance must be >= 0, got %v", c.Game.StartingBalance)
	}

	if c.Market.HistoryWindow < 2 {
		return fmt.Errorf("market.history_window must be >= 2, got %d", c.Market.HistoryWindow)
	}
	if c.Market.FloorRatio <= 0 || c.Market.FloorRatio > 1 {
		return fmt.Errorf("market.floor_ratio must be in (0, 1], got %v", c.Market.FloorRatio)
	}
	if len(c.Market.Commodities) == 0 {
		return errors.New("market.commodities must not be empty")
	}
	seen := make(map[string]bool, len(c.Market.Commodities))
	for i, cm := range c.Market.Commodities {
		prefix := fmt.Sprintf("market.commodities[%d]", i)
		if err := cm.validate(prefix); err != nil {
			return err
		}
		if seen[cm.ID] {
			return fmt.Errorf("%s.id %q is duplicated", prefix, cm.ID)
		}
		seen[cm.ID] = true
	}

	names := make(map[string]bool, len(c.Players.AI)+1)
	if h := strings.TrimSpace(c.Players.Human); h != "" {
		names[h] = true
	}
	for i, ai := range c.Players.AI {
		if ai.Name == "" {
			continue
		}
		if names[ai.Name] {
			return fmt.Errorf("players.ai[%d].name %q is already taken", i, ai.Name)
		}
		names[ai.Name] = true
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func (cm *CommodityConfig) validate(prefix string) error {
	if cm.ID == "" {
		return fmt.Errorf("%s.id is required", prefix)
	}
	if cm.BasePrice < MinBasePrice {
		return fmt.Errorf("%s.base_price must be >= %.2f", prefix, MinBasePrice)
	}
	if cm.Volatility <= 0 || cm.Volatility >= 1 {
		return fmt.Errorf("%s.volatility must be in (0, 1)", prefix)
	}
	return nil
}
