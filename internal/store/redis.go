package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/betpulse/live-gate/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the user's coupon
// list; reads check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

func (s *CachedStore) InsertCoupon(ctx context.Context, c *model.Coupon) error {
	if err := s.primary.InsertCoupon(ctx, c); err != nil {
		return err
	}
	s.cacheCoupon(ctx, c)
	// Invalidate the user's list; next read re-populates.
	s.rdb.Del(ctx, userCouponsKey(c.UserID))
	return nil
}

func (s *CachedStore) GetCoupon(ctx context.Context, id string) (*model.Coupon, error) {
	// Try cache.
	data, err := s.rdb.Get(ctx, couponKey(id)).Bytes()
	if err == nil {
		var c model.Coupon
		if json.Unmarshal(data, &c) == nil {
			return &c, nil
		}
	}

	// Cache miss: read from primary.
	c, err := s.primary.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheCoupon(ctx, c)
	return c, nil
}

func (s *CachedStore) ListCouponsByUser(ctx context.Context, userID string) ([]model.Coupon, error) {
	// Try cache.
	data, err := s.rdb.Get(ctx, userCouponsKey(userID)).Bytes()
	if err == nil {
		var coupons []model.Coupon
		if json.Unmarshal(data, &coupons) == nil {
			return coupons, nil
		}
	}

	// Cache miss.
	coupons, err := s.primary.ListCouponsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(coupons); err == nil {
		s.rdb.Set(ctx, userCouponsKey(userID), data, s.ttl)
	}
	return coupons, nil
}

func (s *CachedStore) cacheCoupon(ctx context.Context, c *model.Coupon) {
	if data, err := json.Marshal(c); err == nil {
		s.rdb.Set(ctx, couponKey(c.ID), data, s.ttl)
	}
}

func couponKey(id string) string        { return fmt.Sprintf("coupon:%s", id) }
func userCouponsKey(uid string) string  { return fmt.Sprintf("coupons:user:%s", uid) }
