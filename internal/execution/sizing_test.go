package execution

import (
	"math"
	"math/rand"
	"testing"

	"hermes_go/internal/domain"
)

func prec(qty, price int) *domain.SymbolPrecision {
	return &domain.SymbolPrecision{QuantityDecimals: qty, PriceDecimals: price}
}

func TestComputeQuantity_NeverRoundsUp(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		notional := 1 + rng.Float64()*100000
		price := 0.0001 + rng.Float64()*90000
		decimals := rng.Intn(9) // [0, 8]

		got, err := ComputeQuantity(notional, price, prec(decimals, 2))
		if err != nil {
			// Legitimate: tiny notional at huge price truncates to zero.
			continue
		}

		exact := notional / price
		if got > exact {
			t.Fatalf("quantity %v exceeds exact quotient %v (notional=%v price=%v decimals=%d)",
				got, exact, notional, price, decimals)
		}
	}
}

func TestComputeQuantity_TruncatesNonZeroDigits(t *testing.T) {
	// 100 / 3 = 33.333...: truncation must land strictly below.
	got, err := ComputeQuantity(100, 3, prec(2, 2))
	if err != nil {
		t.Fatalf("ComputeQuantity failed: %v", err)
	}
	if got != 33.33 {
		t.Errorf("expected 33.33, got %v", got)
	}
	if got >= 100.0/3.0 {
		t.Errorf("truncation must be strictly below the exact quotient")
	}
}

func TestComputeQuantity_DecimalAndFloatAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		notional := 1 + rng.Float64()*10000
		price := 0.01 + rng.Float64()*70000
		decimals := 4 + rng.Intn(5) // (3, 8]

		raw := notional / price
		viaFloat := truncateFloat(raw, decimals)
		viaDecimal := truncateDecimal(raw, decimals)

		step := math.Pow10(-decimals)
		if diff := math.Abs(viaFloat - viaDecimal); diff > step+1e-15 {
			t.Fatalf("paths disagree beyond one step: float=%v decimal=%v (raw=%v decimals=%d)",
				viaFloat, viaDecimal, raw, decimals)
		}
	}
}

func TestComputeQuantity_RejectsBadInput(t *testing.T) {
	cases := []struct {
		name     string
		notional float64
		price    float64
	}{
		{"zero price", 100, 0},
		{"negative price", 100, -5},
		{"zero notional", 0, 100},
		{"negative notional", -10, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ComputeQuantity(tc.notional, tc.price, prec(3, 2)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestComputeQuantity_ZeroAfterTruncation(t *testing.T) {
	// 1 USD at 1,000,000 with 3 decimals truncates to 0.000.
	if _, err := ComputeQuantity(1, 1000000, prec(3, 2)); err == nil {
		t.Error("expected rejection when quantity truncates to zero")
	}
}

func TestComputeQuantity_NilPrecisionUsesRawQuotient(t *testing.T) {
	got, err := ComputeQuantity(100, 3, nil)
	if err != nil {
		t.Fatalf("ComputeQuantity failed: %v", err)
	}
	if got != 100.0/3.0 {
		t.Errorf("expected raw quotient, got %v", got)
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := FormatQuantity(0.123, prec(3, 2)); got != "0.123" {
		t.Errorf("expected 0.123, got %s", got)
	}
	if got := FormatQuantity(7, prec(0, 2)); got != "7" {
		t.Errorf("expected 7, got %s", got)
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(97.999999, prec(3, 2)); got != "98.00" {
		t.Errorf("expected 98.00, got %s", got)
	}
	if got := FormatPrice(105.0, prec(3, 1)); got != "105.0" {
		t.Errorf("expected 105.0, got %s", got)
	}
}
