package risk

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/betpulse/live-gate/internal/model"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func sel(matchID string) model.Selection {
	return model.Selection{MatchID: matchID, MarketName: "1X2", Option: "1", Odds: d(1.80)}
}

func TestCheckStake_WithinLimits(t *testing.T) {
	l := NewStakeLimiter(d(1000), d(5000))

	err := l.CheckStake(d(100), []model.Selection{sel("m1"), sel("m2")}, nil)
	if err != nil {
		t.Errorf("CheckStake() = %v, want nil", err)
	}
}

func TestCheckStake_StakeLimit(t *testing.T) {
	l := NewStakeLimiter(d(1000), d(5000))

	err := l.CheckStake(d(1001), []model.Selection{sel("m1")}, nil)
	if !errors.Is(err, ErrStakeLimitExceeded) {
		t.Errorf("CheckStake() = %v, want ErrStakeLimitExceeded", err)
	}
}

func TestCheckStake_MatchExposure(t *testing.T) {
	l := NewStakeLimiter(d(1000), d(5000))

	exposures := map[string]decimal.Decimal{"m1": d(4950)}
	err := l.CheckStake(d(100), []model.Selection{sel("m1")}, exposures)
	if !errors.Is(err, ErrMatchExposureExceeded) {
		t.Errorf("CheckStake() = %v, want ErrMatchExposureExceeded", err)
	}

	// The same stake is fine on a match with no prior exposure.
	if err := l.CheckStake(d(100), []model.Selection{sel("m2")}, exposures); err != nil {
		t.Errorf("CheckStake() = %v, want nil", err)
	}
}

func TestCheckStake_ZeroLimitsDisableChecks(t *testing.T) {
	l := NewStakeLimiter(decimal.Zero, decimal.Zero)

	exposures := map[string]decimal.Decimal{"m1": d(1_000_000)}
	if err := l.CheckStake(d(1_000_000), []model.Selection{sel("m1")}, exposures); err != nil {
		t.Errorf("CheckStake() = %v, want nil with limits disabled", err)
	}
}

func TestExposuresFromCoupons(t *testing.T) {
	coupons := []model.Coupon{
		{Stake: d(100), Selections: []model.Selection{sel("m1"), sel("m2")}},
		{Stake: d(50), Selections: []model.Selection{sel("m1")}},
	}

	exposures := ExposuresFromCoupons(coupons)
	if !exposures["m1"].Equal(d(150)) {
		t.Errorf("m1 exposure = %s, want 150", exposures["m1"])
	}
	if !exposures["m2"].Equal(d(100)) {
		t.Errorf("m2 exposure = %s, want 100", exposures["m2"])
	}
}

func TestExposuresFromCoupons_DuplicateMatchCountedOnce(t *testing.T) {
	coupons := []model.Coupon{
		{Stake: d(100), Selections: []model.Selection{
			{MatchID: "m1", MarketName: "1X2", Option: "1"},
			{MatchID: "m1", MarketName: "Total Goals", Option: "Over 2.5"},
		}},
	}

	if got := ExposuresFromCoupons(coupons)["m1"]; !got.Equal(d(100)) {
		t.Errorf("m1 exposure = %s, want stake counted once", got)
	}
}
