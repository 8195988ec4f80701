// Package store defines the persistence interface for placed coupons.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
package store

import (
	"context"
	"errors"

	"github.com/betpulse/live-gate/internal/model"
)

// ErrNotFound is returned when a coupon does not exist.
var ErrNotFound = errors.New("store: coupon not found")

// Store is the coupon ledger interface. Coupons are immutable once
// inserted; there are no update or delete operations.
type Store interface {
	// InsertCoupon appends an immutable placed-bet record.
	InsertCoupon(ctx context.Context, coupon *model.Coupon) error

	// GetCoupon retrieves a coupon by its ID.
	GetCoupon(ctx context.Context, id string) (*model.Coupon, error)

	// ListCouponsByUser returns all coupons for a user, newest first.
	ListCouponsByUser(ctx context.Context, userID string) ([]model.Coupon, error)
}
