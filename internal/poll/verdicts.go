package poll

import (
	"sync"

	"github.com/betpulse/live-gate/internal/model"
)

// Verdicts is the shared snapshot of the latest lock verdict per match.
// The pollers write it; the HTTP layer reads it when gating slip adds.
// An unknown match reads as unlocked.
type Verdicts struct {
	mu sync.RWMutex
	m  map[string]model.LockVerdict
}

// NewVerdicts creates an empty verdict snapshot.
func NewVerdicts() *Verdicts {
	return &Verdicts{m: make(map[string]model.LockVerdict)}
}

// Get returns the latest verdict for a match.
func (v *Verdicts) Get(matchID string) model.LockVerdict {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.m[matchID]
}

// Set stores a verdict and reports whether it differs from the previous one.
func (v *Verdicts) Set(matchID string, verdict model.LockVerdict) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	prev := v.m[matchID]
	v.m[matchID] = verdict
	return prev != verdict
}

// drop removes a match's verdict once it is no longer watched.
func (v *Verdicts) drop(matchID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.m, matchID)
}
