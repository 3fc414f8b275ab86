package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseNumericOrDefault is the one coercion step used for every numeric field.
// It never rejects: empty, malformed, NaN or infinite input yields def.
// Thousands separators ("1,234.5") are accepted.
func ParseNumericOrDefault(raw string, def float64) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def
	}
	s = strings.ReplaceAll(s, ",", "")
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return def
	}
	return val
}

// ParseIntOrDefault truncates towards zero after ParseNumericOrDefault.
func ParseIntOrDefault(raw string, def int64) int64 {
	val := ParseNumericOrDefault(raw, math.NaN())
	if math.IsNaN(val) || val >= math.MaxInt64 || val < math.MinInt64 {
		return def
	}
	return int64(val)
}

// NonNegative clamps negative counts to zero.
func NonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func NonNegativeInt(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParseMonth accepts 1-12 or an English month name; anything else becomes 1.
func ParseMonth(raw string) int {
	s := strings.ToLower(strings.TrimSpace(raw))
	if len(s) >= 3 {
		if m, ok := monthNames[s[:3]]; ok {
			return m
		}
	}
	m := ParseIntOrDefault(s, 1)
	if m < 1 || m > 12 {
		return 1
	}
	return int(m)
}

// ParseYear accepts a four digit year, or a financial year like "2023-2024"
// (the first year wins). Anything else becomes def.
func ParseYear(raw string, def int) int {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "-/"); i > 0 {
		s = s[:i]
	}
	y := ParseIntOrDefault(s, int64(def))
	if y < 1000 || y > 9999 {
		return def
	}
	return int(y)
}

// ToString flattens a decoded JSON value for the parsers above.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
