package binance

import (
	"context"
	"strings"

	"hermes_go/internal/domain"
)

// SymbolExists checks the symbol against futures exchange metadata.
func (c *Client) SymbolExists(ctx context.Context, symbol string) (bool, error) {
	info, err := c.api.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return false, domain.NewExchangeError("exchange-info", err)
	}
	for _, s := range info.Symbols {
		if s.Symbol == symbol {
			return true, nil
		}
	}
	return false, nil
}

// ResolvePrecision looks up the rounding rules for one symbol. An absent
// symbol returns ok=false, not an error: callers proceed without rounding.
// The lookup is a single blocking call and is not retried here.
func (c *Client) ResolvePrecision(ctx context.Context, symbol string) (domain.SymbolPrecision, bool, error) {
	info, err := c.api.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return domain.SymbolPrecision{}, false, domain.NewExchangeError("exchange-info", err)
	}

	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}

		prec := domain.SymbolPrecision{
			Symbol:           symbol,
			QuantityDecimals: s.QuantityPrecision,
			PriceDecimals:    s.PricePrecision,
		}

		// PRICE_FILTER tick size is the authoritative price step; the
		// pricePrecision field over-reports for many instruments.
		for _, f := range s.Filters {
			if f["filterType"] != "PRICE_FILTER" {
				continue
			}
			if tick, ok := f["tickSize"].(string); ok {
				prec.PriceDecimals = TickSizeDecimals(tick)
			}
		}
		return prec, true, nil
	}

	return domain.SymbolPrecision{}, false, nil
}

// TickSizeDecimals counts the significant fractional digits of a tick size
// string, trailing zeros stripped: "0.0100" -> 2, "1.0000" -> 0.
func TickSizeDecimals(tickSize string) int {
	trimmed := strings.TrimRight(tickSize, "0")
	dot := strings.IndexByte(trimmed, '.')
	if dot < 0 {
		return 0
	}
	return len(trimmed) - dot - 1
}
