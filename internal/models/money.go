package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a monetary amount string into a decimal value.
// It tolerates surrounding whitespace and a leading currency sign, which is
// what batch CSV inputs tend to contain. An empty string parses to zero.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.TrimLeft(s, "$€£ ")
	s = strings.ReplaceAll(s, ",", "")

	dec, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount string '%s': %w", raw, err)
	}
	return dec, nil
}

// AmountPtr converts a decimal amount into the optional float64 form used by
// Transaction. The zero-value convenience exists for callers whose input had
// no amount column at all.
func AmountPtr(d decimal.Decimal) *float64 {
	f, _ := d.Float64()
	return &f
}
