package betslip

import "sync"

// Manager hands out one slip per user, creating slips lazily on first use.
// Slips live for the process lifetime; there is no eviction, matching how
// a session scope bounds slip lifetime.
type Manager struct {
	mu    sync.Mutex
	slips map[string]*Slip
}

// NewManager creates an empty slip manager.
func NewManager() *Manager {
	return &Manager{slips: make(map[string]*Slip)}
}

// Slip returns the slip for userID, creating it if needed.
func (m *Manager) Slip(userID string) *Slip {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slips[userID]
	if !ok {
		s = New()
		m.slips[userID] = s
	}
	return s
}
