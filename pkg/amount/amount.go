// Package amount converts between minor-unit integers and their decimal
// text forms.
package amount

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Parse converts a decimal string such as "12.34" into minor units for a
// currency with the given number of decimal places. It fails rather than
// round when s has more places than the currency allows.
func Parse(s string, exponent int) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	minor := d.Shift(int32(exponent))
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", s, exponent)
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}
	return minor.IntPart(), nil
}

// Decimal renders minor units as a plain decimal string with exactly
// exponent places, e.g. Decimal(-1234, 2) == "-12.34".
func Decimal(minor int64, exponent int) string {
	return decimal.New(minor, -int32(exponent)).StringFixed(int32(exponent))
}

// Format renders minor units for display, e.g. "€12.34". Currencies the
// money formatter does not know, or knows with a different number of
// places, fall back to "12.34 CODE".
func Format(minor int64, code string, exponent int) string {
	if cur := money.GetCurrency(code); cur != nil && cur.Fraction == exponent {
		return cur.Formatter().Format(minor)
	}
	return Decimal(minor, exponent) + " " + code
}
