package domain

// Side is the direction of an entry order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the closing direction for this side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

const (
	OrderStatusNew             = "NEW"
	OrderStatusPartiallyFilled = "PARTIALLY_FILLED"
	OrderStatusFilled          = "FILLED"
	OrderStatusCanceled        = "CANCELED"
	OrderStatusRejected        = "REJECTED"
	OrderStatusExpired         = "EXPIRED"
)

// OrderIntent is the ephemeral input of one trading action, built from the
// operator's settings and the live price at the moment of submission.
type OrderIntent struct {
	Symbol        string
	Side          Side
	NotionalUSD   float64
	StopLossPct   float64 // (0, 100)
	TakeProfitPct float64 // (0, 100]
}

// Validate rejects an intent before any network call is made.
func (i OrderIntent) Validate() error {
	if i.Symbol == "" {
		return &ValidationError{Field: "symbol", Reason: "empty"}
	}
	if i.Side != SideBuy && i.Side != SideSell {
		return &ValidationError{Field: "side", Reason: "must be BUY or SELL"}
	}
	if i.NotionalUSD <= 0 {
		return &ValidationError{Field: "notional_usd", Reason: "must be positive"}
	}
	if i.StopLossPct <= 0 || i.StopLossPct >= 100 {
		return &ValidationError{Field: "stop_loss_pct", Reason: "must be in (0, 100)"}
	}
	if i.TakeProfitPct <= 0 || i.TakeProfitPct > 100 {
		return &ValidationError{Field: "take_profit_pct", Reason: "must be in (0, 100]"}
	}
	return nil
}

// ExecutedEntry describes a market entry that reached terminal FILLED state.
// The controller tracks at most one live entry at a time; a new entry
// overwrites it and a manual close clears it.
type ExecutedEntry struct {
	OrderID      int64
	Symbol       string
	Side         Side
	Quantity     string // exchange-formatted quantity actually submitted
	AvgFillPrice float64
}

// OrderState is a point-in-time snapshot of an order on the exchange,
// as returned by the get-order endpoint.
type OrderState struct {
	OrderID     int64
	Status      string
	Side        Side
	AvgPrice    float64
	ExecutedQty float64
}

// Filled reports whether the order reached terminal FILLED state.
func (s OrderState) Filled() bool {
	return s.Status == OrderStatusFilled
}

// SymbolPrecision carries the rounding rules for one instrument. Immutable
// once resolved; must be re-resolved whenever the active symbol changes.
type SymbolPrecision struct {
	Symbol           string
	QuantityDecimals int
	PriceDecimals    int
}

// UseDecimal reports whether sizing needs exact decimal arithmetic.
// Binary float truncation drifts once the step goes below 1e-3.
func (p SymbolPrecision) UseDecimal() bool {
	return p.QuantityDecimals > 3
}
