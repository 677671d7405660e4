package domain

import "testing"

func validIntent() OrderIntent {
	return OrderIntent{
		Symbol:        "BTCUSDT",
		Side:          SideBuy,
		NotionalUSD:   100,
		StopLossPct:   2,
		TakeProfitPct: 5,
	}
}

func TestOrderIntent_Validate(t *testing.T) {
	if err := validIntent().Validate(); err != nil {
		t.Fatalf("valid intent rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*OrderIntent)
	}{
		{"empty symbol", func(i *OrderIntent) { i.Symbol = "" }},
		{"bad side", func(i *OrderIntent) { i.Side = "HOLD" }},
		{"zero notional", func(i *OrderIntent) { i.NotionalUSD = 0 }},
		{"negative notional", func(i *OrderIntent) { i.NotionalUSD = -5 }},
		{"zero stop loss", func(i *OrderIntent) { i.StopLossPct = 0 }},
		{"stop loss at 100", func(i *OrderIntent) { i.StopLossPct = 100 }},
		{"zero take profit", func(i *OrderIntent) { i.TakeProfitPct = 0 }},
		{"take profit above 100", func(i *OrderIntent) { i.TakeProfitPct = 100.01 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intent := validIntent()
			tc.mutate(&intent)
			if err := intent.Validate(); err == nil {
				t.Error("expected rejection")
			}
		})
	}

	// Boundary: take profit of exactly 100 is allowed, stop loss is not.
	intent := validIntent()
	intent.TakeProfitPct = 100
	if err := intent.Validate(); err != nil {
		t.Errorf("take profit of 100 must be allowed: %v", err)
	}
}

func TestSide_Opposite(t *testing.T) {
	if SideBuy.Opposite() != SideSell {
		t.Error("BUY must close with SELL")
	}
	if SideSell.Opposite() != SideBuy {
		t.Error("SELL must close with BUY")
	}
}

func TestOrderState_Filled(t *testing.T) {
	for _, status := range []string{OrderStatusNew, OrderStatusPartiallyFilled, OrderStatusCanceled, OrderStatusRejected, OrderStatusExpired} {
		if (OrderState{Status: status}).Filled() {
			t.Errorf("%s must not count as filled", status)
		}
	}
	if !(OrderState{Status: OrderStatusFilled}).Filled() {
		t.Error("FILLED must count as filled")
	}
}

func TestSymbolPrecision_UseDecimal(t *testing.T) {
	cases := []struct {
		decimals int
		want     bool
	}{
		{0, false},
		{3, false},
		{4, true},
		{8, true},
	}
	for _, tc := range cases {
		p := SymbolPrecision{QuantityDecimals: tc.decimals}
		if p.UseDecimal() != tc.want {
			t.Errorf("UseDecimal with %d decimals: expected %v", tc.decimals, tc.want)
		}
	}
}
