package feed

import (
	"github.com/shopspring/decimal"

	"github.com/betpulse/live-gate/internal/model"
)

// NormalizeMarkets extracts the canonical market list from a raw odds
// payload. Options without a parseable price are dropped; stopped,
// suspended and is_unavailable flags all map to Stopped.
func NormalizeMarkets(raws []map[string]any) []model.Market {
	markets := make([]model.Market, 0, len(raws))
	for _, raw := range raws {
		m := model.Market{Name: stringAt(raw, "name", "market_name", "marketName", "title")}

		for _, opt := range listAt(raw, "options", "outcomes", "selections") {
			value, ok := coerceDecimal(firstOf(opt, "value", "odds", "price", "odd"))
			if !ok {
				continue
			}
			m.Options = append(m.Options, model.MarketOption{
				Label:   stringAt(opt, "label", "name", "option"),
				Value:   value,
				Stopped: boolAt(opt, "stopped", "suspended", "is_unavailable", "isUnavailable"),
			})
		}
		markets = append(markets, m)
	}
	return markets
}

// listAt returns the first list of objects found under the given keys.
func listAt(raw map[string]any, keys ...string) []map[string]any {
	for _, k := range keys {
		items, ok := raw[k].([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}

func firstOf(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// coerceDecimal converts a feed price (number or numeric string) to decimal.
func coerceDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x), true
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case int:
		return decimal.NewFromInt(int64(x)), true
	}
	return decimal.Zero, false
}

// boolAt reports whether any of the given keys holds a truthy flag. Feeds
// variously send booleans, 0/1 numbers, and "true"/"1" strings.
func boolAt(raw map[string]any, keys ...string) bool {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case bool:
			if v {
				return true
			}
		case float64:
			if v != 0 {
				return true
			}
		case string:
			if v == "true" || v == "1" {
				return true
			}
		}
	}
	return false
}
