package execution

import (
	"math"
	"strconv"

	"hermes_go/internal/domain"

	"github.com/shopspring/decimal"
)

// ComputeQuantity sizes an order: notional / price, truncated toward zero to
// the symbol's quantity precision. Truncation never rounds up, so the
// submitted notional can only undershoot the requested one.
//
// Binary float arithmetic is fine for coarse steps, but below 1e-3 the
// scale-truncate-descale round trip drifts; those symbols go through exact
// decimal arithmetic instead (prec.UseDecimal).
//
// A nil precision means the symbol was absent from exchange metadata: the
// raw quotient is used unrounded rather than failing the pipeline.
func ComputeQuantity(notionalUSD, price float64, prec *domain.SymbolPrecision) (float64, error) {
	if price <= 0 {
		return 0, &domain.ValidationError{Field: "price", Reason: "must be positive"}
	}
	if notionalUSD <= 0 {
		return 0, &domain.ValidationError{Field: "notional_usd", Reason: "must be positive"}
	}

	raw := notionalUSD / price

	quantity := raw
	if prec != nil {
		if prec.UseDecimal() {
			quantity = truncateDecimal(raw, prec.QuantityDecimals)
		} else {
			quantity = truncateFloat(raw, prec.QuantityDecimals)
		}
	}

	if quantity <= 0 {
		return 0, &domain.ValidationError{Field: "quantity", Reason: "rounds to zero"}
	}
	return quantity, nil
}

// truncateFloat drops fractional digits beyond the given decimals using
// plain float64 arithmetic.
func truncateFloat(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Trunc(v*scale) / scale
}

// truncateDecimal drops fractional digits using exact decimal arithmetic,
// immune to binary representation drift.
func truncateDecimal(v float64, decimals int) float64 {
	return decimal.NewFromFloat(v).Truncate(int32(decimals)).InexactFloat64()
}

// FormatQuantity renders a quantity for the order API. With known precision
// the value is printed with exactly that many decimals; otherwise with the
// shortest exact representation.
func FormatQuantity(quantity float64, prec *domain.SymbolPrecision) string {
	if prec == nil {
		return strconv.FormatFloat(quantity, 'f', -1, 64)
	}
	return strconv.FormatFloat(quantity, 'f', prec.QuantityDecimals, 64)
}

// FormatPrice rounds a protective price to the symbol's price precision.
func FormatPrice(price float64, prec *domain.SymbolPrecision) string {
	if prec == nil {
		return strconv.FormatFloat(price, 'f', -1, 64)
	}
	return strconv.FormatFloat(price, 'f', prec.PriceDecimals, 64)
}
