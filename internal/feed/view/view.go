package view

import (
	"sync"

	"github.com/zappabad/trenchor/internal/feed"
)

// FeedView maintains a bounded ring buffer of headlines.
type FeedView struct {
	mu    sync.RWMutex
	buf   []feed.Headline
	size  int
	start int
	count int
}

// NewFeedView creates a new FeedView with the given capacity.
func NewFeedView(capacity int) *FeedView {
	if capacity <= 0 {
		capacity = 100
	}
	return &FeedView{
		buf:  make([]feed.Headline, capacity),
		size: capacity,
	}
}

// Apply adds a headline, overwriting the oldest when full.
func (v *FeedView) Apply(h feed.Headline) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.count < v.size {
		v.buf[(v.start+v.count)%v.size] = h
		v.count++
		return
	}
	v.buf[v.start] = h
	v.start = (v.start + 1) % v.size
}

// Latest returns the last n headlines, oldest first.
func (v *FeedView) Latest(n int) []feed.Headline {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if n <= 0 || v.count == 0 {
		return nil
	}
	if n > v.count {
		n = v.count
	}

	out := make([]feed.Headline, n)
	first := (v.start + (v.count - n)) % v.size
	for i := 0; i < n; i++ {
		out[i] = v.buf[(first+i)%v.size]
	}
	return out
}

// Since returns the retained headlines with an ID greater than after, oldest first.
func (v *FeedView) Since(after feed.HeadlineID) []feed.Headline {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var out []feed.Headline
	for i := 0; i < v.count; i++ {
		h := v.buf[(v.start+i)%v.size]
		if h.ID > after {
			out = append(out, h)
		}
	}
	return out
}

// Count returns the number of headlines held.
func (v *FeedView) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.count
}
