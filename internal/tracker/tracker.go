// Package tracker infers "did this just happen" from count deltas between
// polls when the upstream feed supplies no authoritative event timestamps.
//
// The inference is approximate: two occurrences between consecutive polls
// count as one, and an upstream count correction re-arms the entry at the
// lower value. The feed data supports nothing stronger.
package tracker

import (
	"sync"
	"time"
)

// DefaultWindow is the recency threshold applied when the caller passes a
// non-positive window to Observe.
const DefaultWindow = 30 * time.Second

// Occurrence categories observed per match.
const (
	CategoryGoal           = "goal"
	CategoryDangerousEvent = "dangerousEvent"
)

type entry struct {
	count int
	at    time.Time
}

type key struct {
	matchID  string
	category string
}

// Tracker holds per-match, per-category occurrence counters. Construct one
// per long-lived scope (the server owns a single instance shared by all
// polling goroutines); a fresh instance per test gives clean isolation.
type Tracker struct {
	mu      sync.Mutex
	entries map[key]entry
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{entries: make(map[key]entry)}
}

// Observe records the current occurrence count for (matchID, category) at
// instant now and reports whether a new occurrence happened within window.
//
// The first observation for a key always returns false, even for a non-zero
// count: events that predate the first poll must not trigger a lock. Every
// call refreshes the stored count and timestamp, so re-observing unchanged
// input never reports a new occurrence.
func (t *Tracker) Observe(matchID, category string, currentCount int, now time.Time, window time.Duration) bool {
	if window <= 0 {
		window = DefaultWindow
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	k := key{matchID: matchID, category: category}
	prev, seen := t.entries[k]
	t.entries[k] = entry{count: currentCount, at: now}

	if !seen {
		return false
	}
	return currentCount > prev.count && now.Sub(prev.at) < window
}

// Len returns the number of tracked (match, category) entries.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Forget drops all entries for a match, freeing state once a match is no
// longer watched.
func (t *Tracker) Forget(matchID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.entries {
		if k.matchID == matchID {
			delete(t.entries, k)
		}
	}
}
