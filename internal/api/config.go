package api

type Config struct {
	CommandBuffer int // inbound command queue

	// Updates() is best-effort: an update is dropped if the consumer is slow.
	UpdateBuffer int

	FeedSize int // headlines returned with each view
}

func (c Config) withDefaults() Config {
	if c.CommandBuffer <= 0 {
		c.CommandBuffer = 64
	}
	if c.UpdateBuffer <= 0 {
		c.UpdateBuffer = 16
	}
	if c.FeedSize <= 0 {
		c.FeedSize = 8
	}
	return c
}
