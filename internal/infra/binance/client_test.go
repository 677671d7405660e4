package binance

import (
	"testing"

	"github.com/adshao/go-binance/v2/futures"
)

func TestStopMarketOrderType(t *testing.T) {
	// The futures package only defines LIMIT, MARKET and LIQUIDATION;
	// stop-market orders go out with the raw string the exchange accepts.
	if string(orderTypeStopMarket) != "STOP_MARKET" {
		t.Errorf("unexpected stop-market order type %q", orderTypeStopMarket)
	}
	if orderTypeStopMarket == futures.OrderTypeLimit || orderTypeStopMarket == futures.OrderTypeMarket {
		t.Error("stop-market must be distinct from the defined order types")
	}
}
