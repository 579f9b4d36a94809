package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount parses a decimal-formatted monetary string, tolerating
// surrounding whitespace. Returns 0 for anything unparsable.
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatAmount renders a monetary value with exactly two decimals.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// IsZeroAmount reports whether a monetary string is empty or one of the
// zero spellings the remote system emits ("0", "0.0", "0.00").
func IsZeroAmount(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "0", "0.0", "0.00":
		return true
	}
	return false
}

// Tokenize splits a query into lower-cased whitespace tokens.
func Tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
