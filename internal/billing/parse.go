package billing

import (
	"strconv"
	"strings"
)

// Numeric form text is parsed leniently: bad input is never an error, the
// caller substitutes a fallback value deliberately. ParseAmount and
// ParseQuantity return ok=false instead of coercing to zero so the fallback
// choice stays with the caller.

// ParseAmount parses a monetary or rate value from form text.
func ParseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseQuantity parses an integer quantity from form text.
func ParseQuantity(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseAmountOr parses s, falling back when the text is not numeric.
func ParseAmountOr(s string, fallback float64) float64 {
	if v, ok := ParseAmount(s); ok {
		return v
	}
	return fallback
}

// ParseQuantityOr parses s, falling back when the text is not numeric.
func ParseQuantityOr(s string, fallback int) int {
	if v, ok := ParseQuantity(s); ok {
		return v
	}
	return fallback
}
