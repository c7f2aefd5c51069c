// Package entropy supplies the random draws used by the market and the AI traders.
// Everything that rolls dice takes a Source so tests can pin the outcome.
package entropy

import (
	"math/rand"
	"sync"
	"time"
)

// Source yields floats uniformly distributed in [0, 1).
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSeeded returns a pseudo-random Source. A zero seed picks one from the clock.
func NewSeeded(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Between maps one draw from src onto [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Sequence replays a fixed list of values, wrapping around at the end.
// Values outside [0, 1) are clamped.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequence creates a Sequence. With no values it always returns 0.5.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: append([]float64(nil), values...)}
}

// Float64 implements Source.
func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 {
		return 0.5
	}
	v := s.values[s.next%len(s.values)]
	s.next++

	if v < 0 {
		return 0
	}
	if v >= 1 {
		// largest float64 below 1
		return 0.9999999999999999
	}
	return v
}

// Draws returns how many values have been consumed.
func (s *Sequence) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
