package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/betpulse/live-gate/internal/model"
)

// MemoryStore implements Store with in-memory slices. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu      sync.RWMutex
	coupons []model.Coupon
	byID    map[string]int
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

func (s *MemoryStore) InsertCoupon(_ context.Context, coupon *model.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[coupon.ID]; exists {
		return fmt.Errorf("coupon %s already exists", coupon.ID)
	}

	// Store a copy to avoid external mutation.
	cp := *coupon
	cp.Selections = append([]model.Selection(nil), coupon.Selections...)
	s.byID[coupon.ID] = len(s.coupons)
	s.coupons = append(s.coupons, cp)
	return nil
}

func (s *MemoryStore) GetCoupon(_ context.Context, id string) (*model.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := s.coupons[idx]
	cp.Selections = append([]model.Selection(nil), cp.Selections...)
	return &cp, nil
}

func (s *MemoryStore) ListCouponsByUser(_ context.Context, userID string) ([]model.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Coupon
	// Reverse insertion order: newest first.
	for i := len(s.coupons) - 1; i >= 0; i-- {
		if s.coupons[i].UserID == userID {
			cp := s.coupons[i]
			cp.Selections = append([]model.Selection(nil), cp.Selections...)
			result = append(result, cp)
		}
	}
	return result, nil
}
