// Package risk enforces stake limits at the coupon placement boundary.
//
// A user spreading stakes across many coupons on the same match carries
// concentrated risk for the book. This package checks both the single
// coupon stake and the aggregate stake exposure per match across a user's
// open coupons.
package risk

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/betpulse/live-gate/internal/model"
)

var (
	// ErrStakeLimitExceeded is returned when a single coupon stake exceeds
	// the per-coupon maximum.
	ErrStakeLimitExceeded = errors.New("risk: coupon stake limit exceeded")

	// ErrMatchExposureExceeded is returned when placing the coupon would
	// push the user's aggregate stake on one match beyond the maximum.
	ErrMatchExposureExceeded = errors.New("risk: per-match stake exposure limit exceeded")
)

// StakeLimiter validates coupon stakes against per-coupon and per-match
// exposure limits.
type StakeLimiter struct {
	// MaxStake is the maximum stake for a single coupon.
	MaxStake decimal.Decimal

	// MaxMatchExposure is the maximum aggregate stake a user may have
	// riding on any single match across open coupons.
	MaxMatchExposure decimal.Decimal
}

// NewStakeLimiter creates a limiter with the given limits.
func NewStakeLimiter(maxStake, maxMatchExposure decimal.Decimal) *StakeLimiter {
	return &StakeLimiter{MaxStake: maxStake, MaxMatchExposure: maxMatchExposure}
}

// CheckStake validates a pending coupon.
//
// Parameters:
//   - stake: the coupon's stake
//   - selections: the coupon's selections (one exposure unit per match)
//   - existingExposures: map of match id → aggregate stake already placed
//     by this user on that match
//
// Returns nil when the coupon is within limits.
func (l *StakeLimiter) CheckStake(
	stake decimal.Decimal,
	selections []model.Selection,
	existingExposures map[string]decimal.Decimal,
) error {
	if l.MaxStake.IsPositive() && stake.GreaterThan(l.MaxStake) {
		return ErrStakeLimitExceeded
	}
	if !l.MaxMatchExposure.IsPositive() {
		return nil
	}

	seen := make(map[string]bool, len(selections))
	for _, sel := range selections {
		if seen[sel.MatchID] {
			continue // one market per match already guaranteed by the slip
		}
		seen[sel.MatchID] = true

		total := existingExposures[sel.MatchID].Add(stake)
		if total.GreaterThan(l.MaxMatchExposure) {
			return ErrMatchExposureExceeded
		}
	}
	return nil
}

// ExposuresFromCoupons aggregates a user's existing per-match stake
// exposure from their placed coupons.
func ExposuresFromCoupons(coupons []model.Coupon) map[string]decimal.Decimal {
	exposures := make(map[string]decimal.Decimal)
	for _, c := range coupons {
		seen := make(map[string]bool, len(c.Selections))
		for _, sel := range c.Selections {
			if seen[sel.MatchID] {
				continue
			}
			seen[sel.MatchID] = true
			exposures[sel.MatchID] = exposures[sel.MatchID].Add(c.Stake)
		}
	}
	return exposures
}
