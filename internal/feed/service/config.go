package service

// Config holds configuration for the feed service.
type Config struct {
	// TapeSize is the capacity of the headline ring buffer.
	TapeSize int
	// MoverThreshold is the absolute percent change that makes a commodity headline news.
	MoverThreshold float64
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		TapeSize:       100,
		MoverThreshold: 10,
	}
}
