// Package format renders report figures for display.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency renders amount with two decimals, half-up rounding and thousands
// separators, e.g. "$1,234.50" and "-$5.00".
func Currency(amount float64, symbol string) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + symbol + group(whole) + "." + frac
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ParseCurrency reads back a Currency string. Everything before the first
// digit is taken as the currency symbol, so symbols may contain dots ("Rs.").
// Thousands separators are ignored.
func ParseCurrency(s string) (float64, error) {
	t := strings.TrimSpace(s)
	neg := strings.HasPrefix(t, "-")
	if neg {
		t = t[1:]
	}
	t = strings.TrimLeftFunc(t, func(r rune) bool {
		return r < '0' || r > '9'
	})
	t = strings.ReplaceAll(t, ",", "")
	d, err := decimal.NewFromString(t)
	if err != nil {
		return 0, fmt.Errorf("parse currency %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	f, _ := d.Float64()
	return f, nil
}

// Percent renders v with one decimal and a percent sign.
func Percent(v float64) string {
	return decimal.NewFromFloat(v).Round(1).StringFixed(1) + "%"
}

// Days renders a day count with one decimal; an unbounded count is "∞".
func Days(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return decimal.NewFromFloat(v).Round(1).StringFixed(1) + " days"
}

// Number renders a quantity with up to two decimals and no trailing zeros.
func Number(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}
