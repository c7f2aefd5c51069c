package runner

// Config holds configuration for the trader runner.
type Config struct {
	// RecentEvents is how many past turns Info reports.
	RecentEvents int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		RecentEvents: 10,
	}
}
