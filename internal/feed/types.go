package feed

import "time"

const (
	// DefaultStreamURL is the Binance USDT-M futures public stream host.
	// One trade-channel subscription per active symbol.
	DefaultStreamURL = "wss://fstream.binance.com/ws"

	handshakeTimeout = 10 * time.Second
	readTimeout      = 5 * time.Minute
)

// tradeMessage is the inbound trade event. Binance sends prices as strings.
type tradeMessage struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"`
}
