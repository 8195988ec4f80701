package feed

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeMarkets(t *testing.T) {
	raws := []map[string]any{
		{
			"name": "1X2",
			"options": []any{
				map[string]any{"label": "1", "value": 1.80},
				map[string]any{"label": "X", "value": "3.40"},
				map[string]any{"label": "2", "odds": 4.25, "stopped": true},
			},
		},
	}

	markets := NormalizeMarkets(raws)
	if len(markets) != 1 {
		t.Fatalf("markets = %d, want 1", len(markets))
	}
	m := markets[0]
	if m.Name != "1X2" {
		t.Errorf("name = %q", m.Name)
	}
	if len(m.Options) != 3 {
		t.Fatalf("options = %d, want 3", len(m.Options))
	}
	if !m.Options[0].Value.Equal(decimal.NewFromFloat(1.80)) {
		t.Errorf("numeric value = %s", m.Options[0].Value)
	}
	if !m.Options[1].Value.Equal(decimal.NewFromFloat(3.40)) {
		t.Errorf("string value = %s", m.Options[1].Value)
	}
	if m.Options[0].Stopped || m.Options[1].Stopped {
		t.Error("unflagged options should not be stopped")
	}
	if !m.Options[2].Stopped {
		t.Error("stopped flag should carry through")
	}
}

func TestNormalizeMarkets_SuspensionFlagVariants(t *testing.T) {
	raws := []map[string]any{
		{
			"market_name": "Total Goals",
			"outcomes": []any{
				map[string]any{"name": "Over 2.5", "price": 1.95, "suspended": true},
				map[string]any{"name": "Under 2.5", "price": 1.85, "is_unavailable": float64(1)},
			},
		},
	}

	markets := NormalizeMarkets(raws)
	if len(markets) != 1 || len(markets[0].Options) != 2 {
		t.Fatalf("unexpected shape: %+v", markets)
	}
	for i, opt := range markets[0].Options {
		if !opt.Stopped {
			t.Errorf("option %d should be stopped", i)
		}
	}
}

func TestNormalizeMarkets_UnpriceableOptionsDropped(t *testing.T) {
	raws := []map[string]any{
		{
			"name": "1X2",
			"options": []any{
				map[string]any{"label": "1", "value": "not a number"},
				map[string]any{"label": "2", "value": 2.10},
			},
		},
	}

	markets := NormalizeMarkets(raws)
	if len(markets[0].Options) != 1 {
		t.Fatalf("options = %d, want 1", len(markets[0].Options))
	}
	if markets[0].Options[0].Label != "2" {
		t.Errorf("kept option = %q", markets[0].Options[0].Label)
	}
}
