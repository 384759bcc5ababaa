// Package numeric holds the parse-or-default helpers used wherever logged
// training data arrives loosely typed (JSON exports, Firestore documents).
package numeric

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseNonNegative coerces raw into a finite, non-negative float64.
// Empty strings count as 0. Anything else that is not a number, or that is
// negative, NaN or infinite, yields def.
func ParseNonNegative(raw any, def float64) float64 {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint64:
		f = float64(v)
	case uint32:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return def
		}
		f = parsed
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return def
		}
		f = parsed
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return def
	}
	return f
}

// NonNegative returns v, or 0 when v is negative, NaN or infinite.
func NonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// FirstInteger returns the first run of ASCII digits in s.
// "8-12" -> (8, true), "reps" -> (0, false). A run too large for int is
// reported as not found.
func FirstInteger(s string) (int, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return atoi(s[start:i])
		}
	}
	if start < 0 {
		return 0, false
	}
	return atoi(s[start:])
}

func atoi(digits string) (int, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
