package feed

import (
	"strconv"
	"strings"
	"time"
)

// Extraction helpers for the heterogeneous upstream payloads. Every helper
// is total: a missing or misshapen field yields the zero value, never an
// error. Downstream logic only ever sees canonical model types.

// stringAt returns the first non-empty string found under the given keys.
// A nested object is accepted when it carries a "name" field.
func stringAt(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case map[string]any:
			if s, ok := v["name"].(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// nestedStringAt returns raw[outer][inner] when both levels exist.
func nestedStringAt(raw map[string]any, outer, inner string) string {
	obj, ok := raw[outer].(map[string]any)
	if !ok {
		return ""
	}
	s, _ := obj[inner].(string)
	return strings.TrimSpace(s)
}

// intAt returns the first parseable non-negative integer under the given
// keys. Numbers and numeric strings are both accepted; "45+2" style clock
// values are truncated at the plus sign.
func intAt(raw map[string]any, keys ...string) (int, bool) {
	for _, k := range keys {
		if n, ok := coerceInt(raw[k]); ok {
			return n, true
		}
	}
	return 0, false
}

// coerceInt converts a feed value (number or numeric string) to an int.
func coerceInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return int(x), true
	case int:
		return x, true
	case int64:
		return int(x), true
	case string:
		s := strings.TrimSpace(x)
		if i := strings.IndexByte(s, '+'); i > 0 {
			s = s[:i]
		}
		s = strings.TrimSuffix(s, "%")
		if s == "" {
			return 0, false
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

// timeAt parses an absolute instant from any of the given keys. RFC 3339
// strings and unix second/millisecond numbers are accepted.
func timeAt(raw map[string]any, keys ...string) *time.Time {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
				if t, err := time.Parse(layout, v); err == nil {
					return &t
				}
			}
		case float64:
			if v <= 0 {
				continue
			}
			sec := int64(v)
			var t time.Time
			if sec > 1e12 { // millisecond epoch
				t = time.UnixMilli(sec).UTC()
			} else {
				t = time.Unix(sec, 0).UTC()
			}
			return &t
		}
	}
	return nil
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
