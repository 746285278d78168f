package session

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount interprets a raw purchase-amount buffer. Purchase amounts are
// informational, so capture is best-effort: empty, non-numeric or negative
// input is recorded as 0 rather than rejected. Values are rounded to cents.
func ParseAmount(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return math.Round(value*100) / 100
}

// SuggestAmount seeds the amount buffer from an estimated price.
func SuggestAmount(price float64) string {
	if price <= 0 {
		return ""
	}
	return strconv.FormatFloat(price, 'f', 2, 64)
}
