package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of decimal places one tick represents.
// All prices in the book are int64 tick counts; 10050 ticks = 100.50.
const PriceScale int32 = 2

// ParsePrice converts decimal price text ("100.50") to ticks. The price must
// be positive and a whole number of ticks; sub-tick values are rejected, never
// rounded.
func ParsePrice(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	if d.Sign() <= 0 {
		return 0, fmt.Errorf("invalid price %q: must be positive", s)
	}
	ticks := d.Shift(PriceScale)
	if !ticks.IsInteger() {
		return 0, fmt.Errorf("invalid price %q: finer than tick size", s)
	}
	// IntPart wraps silently when the tick count exceeds int64.
	if !ticks.BigInt().IsInt64() {
		return 0, fmt.Errorf("invalid price %q: out of range", s)
	}
	return ticks.IntPart(), nil
}

// FormatPrice renders ticks as decimal price text with two places.
func FormatPrice(ticks int64) string {
	return decimal.New(ticks, -PriceScale).StringFixed(PriceScale)
}
