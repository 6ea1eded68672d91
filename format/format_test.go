package format

import (
	"math"
	"math/rand"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{5, "$5.00"},
		{-5, "-$5.00"},
		{1234.5, "$1,234.50"},
		{999.999, "$1,000.00"},
		{1234567.891, "$1,234,567.89"},
		{2.345, "$2.35"},
		{0.125, "$0.13"},
		{-0.004, "$0.00"},
	}
	for _, tt := range tests {
		if got := Currency(tt.amount, "$"); got != tt.want {
			t.Errorf("Currency(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
	if got := Currency(12, "€"); got != "€12.00" {
		t.Errorf("Currency(12, €) = %q", got)
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$1,234.50", 1234.5},
		{"-$5.00", -5},
		{"€12.00", 12},
		{" 7 ", 7},
		{"Rs.1,234.50", 1234.5},
		{"-kr.0.75", -0.75},
		{"CHF 3.10", 3.1},
	}
	for _, tt := range tests {
		got, err := ParseCurrency(tt.in)
		if err != nil {
			t.Fatalf("ParseCurrency(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseCurrency(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseCurrency("$abc"); err == nil {
		t.Error("ParseCurrency($abc) should fail")
	}
}

func TestCurrencyRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for _, symbol := range []string{"$", "€", "CHF ", "Rs.", "kr."} {
		for i := 0; i < 1000; i++ {
			x := (r.Float64() - 0.5) * 2e6
			got, err := ParseCurrency(Currency(x, symbol))
			if err != nil {
				t.Fatalf("ParseCurrency(Currency(%v, %q)) error: %v", x, symbol, err)
			}
			if math.Abs(got-x) > 0.005+1e-9 {
				t.Fatalf("ParseCurrency(Currency(%v, %q)) = %v, off by more than half a cent", x, symbol, got)
			}
		}
	}
}

func TestPercentAndDays(t *testing.T) {
	if got := Percent(66.666); got != "66.7%" {
		t.Errorf("Percent(66.666) = %q", got)
	}
	if got := Percent(0); got != "0.0%" {
		t.Errorf("Percent(0) = %q", got)
	}
	if got := Days(math.Inf(1)); got != "∞" {
		t.Errorf("Days(+Inf) = %q", got)
	}
	if got := Days(15); got != "15.0 days" {
		t.Errorf("Days(15) = %q", got)
	}
	if got := Number(2.50); got != "2.5" {
		t.Errorf("Number(2.5) = %q", got)
	}
}
