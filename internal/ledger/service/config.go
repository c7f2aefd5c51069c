package service

// Config holds configuration for the ledger.
type Config struct {
	// RecentTrades is how many trades a player report includes.
	RecentTrades int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		RecentTrades: 5,
	}
}
