package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/betpulse/live-gate/internal/model"
)

func testCoupon(t *testing.T, userID string) *model.Coupon {
	t.Helper()
	return &model.Coupon{
		ID:     uuid.New().String(),
		UserID: userID,
		Selections: []model.Selection{
			{
				SelectionID:  uuid.New().String(),
				MatchID:      "m1",
				MatchName:    "Home vs Away",
				MarketName:   "1X2",
				Option:       "1",
				Odds:         decimal.NewFromFloat(1.80),
				SnapshotOdds: decimal.NewFromFloat(1.80),
				IsLive:       true,
			},
		},
		Stake:        decimal.NewFromInt(100),
		TotalOdds:    decimal.NewFromFloat(1.80),
		PotentialWin: decimal.NewFromInt(180),
		PlacedAt:     time.Now().UTC(),
	}
}

func TestMemoryStore_InsertAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c := testCoupon(t, "user-1")
	if err := s.InsertCoupon(ctx, c); err != nil {
		t.Fatalf("InsertCoupon() = %v", err)
	}

	got, err := s.GetCoupon(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCoupon() = %v", err)
	}
	if got.UserID != "user-1" || len(got.Selections) != 1 {
		t.Errorf("coupon = %+v", got)
	}
	if !got.Stake.Equal(c.Stake) || !got.TotalOdds.Equal(c.TotalOdds) {
		t.Errorf("amounts = %s/%s, want %s/%s", got.Stake, got.TotalOdds, c.Stake, c.TotalOdds)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetCoupon(context.Background(), uuid.New().String())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCoupon() = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_DuplicateInsert(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c := testCoupon(t, "user-1")
	if err := s.InsertCoupon(ctx, c); err != nil {
		t.Fatalf("InsertCoupon() = %v", err)
	}
	if err := s.InsertCoupon(ctx, c); err == nil {
		t.Error("duplicate insert succeeded")
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := testCoupon(t, "user-1")
	second := testCoupon(t, "user-1")
	other := testCoupon(t, "user-2")
	for _, c := range []*model.Coupon{first, second, other} {
		if err := s.InsertCoupon(ctx, c); err != nil {
			t.Fatalf("InsertCoupon() = %v", err)
		}
	}

	got, err := s.ListCouponsByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListCouponsByUser() = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("order = [%s %s], want newest first", got[0].ID, got[1].ID)
	}
}

func TestMemoryStore_ReadsAreCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c := testCoupon(t, "user-1")
	if err := s.InsertCoupon(ctx, c); err != nil {
		t.Fatalf("InsertCoupon() = %v", err)
	}

	got, _ := s.GetCoupon(ctx, c.ID)
	got.Selections[0].Option = "mutated"

	again, _ := s.GetCoupon(ctx, c.ID)
	if again.Selections[0].Option != "1" {
		t.Error("mutating a returned coupon leaked into the store")
	}
}
