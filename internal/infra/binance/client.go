// Package binance is the boundary layer around the Binance USDT-M futures
// REST API. The execution engine and controller consume it through their
// own small interfaces; nothing above this package touches the SDK types.
package binance

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"

	"hermes_go/internal/domain"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/google/uuid"
)

// Client wraps the futures REST client with connection state. Credentials
// are validated once with an account-info call; until that succeeds every
// trading call fails fast with ErrNotConnected.
type Client struct {
	api       *futures.Client
	logger    *slog.Logger
	connected atomic.Bool
}

// NewClient builds a client from configured credentials. Connect must be
// called before trading.
func NewClient(apiKey, secretKey string, useTestnet bool) *Client {
	if useTestnet {
		futures.UseTestnet = true
	}
	return &Client{
		api:    gobinance.NewFuturesClient(apiKey, secretKey),
		logger: slog.Default().With("module", "binance_client"),
	}
}

// Connect validates the credentials with an account-info call.
func (c *Client) Connect(ctx context.Context) error {
	if _, err := c.api.NewGetAccountService().Do(ctx); err != nil {
		c.connected.Store(false)
		return domain.NewExchangeError("account-info", err)
	}
	c.connected.Store(true)
	c.logger.Info("connected to Binance futures")
	return nil
}

// SetKeys replaces the credentials and revalidates the connection.
func (c *Client) SetKeys(ctx context.Context, apiKey, secretKey string) error {
	c.api = gobinance.NewFuturesClient(apiKey, secretKey)
	c.connected.Store(false)
	return c.Connect(ctx)
}

// IsConnected reports whether credentials have been validated.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// The SDK's futures package defines no stop-market constant; the exchange
// accepts the raw order type string.
const orderTypeStopMarket = futures.OrderType("STOP_MARKET")

func sideOf(side domain.Side) futures.SideType {
	if side == domain.SideSell {
		return futures.SideTypeSell
	}
	return futures.SideTypeBuy
}

// CreateMarketOrder submits one market order and returns its exchange id.
// A fresh client order id makes accidental resubmission detectable.
func (c *Client) CreateMarketOrder(ctx context.Context, symbol string, side domain.Side, quantity string, reduceOnly bool) (int64, error) {
	svc := c.api.NewCreateOrderService().
		Symbol(symbol).
		Side(sideOf(side)).
		Type(futures.OrderTypeMarket).
		Quantity(quantity).
		NewClientOrderID(uuid.New().String())
	if reduceOnly {
		svc = svc.ReduceOnly(true)
	}

	res, err := svc.Do(ctx)
	if err != nil {
		return 0, domain.NewFatalExchangeError("create-order", err)
	}
	return res.OrderID, nil
}

// CreateStopMarketOrder places a reduce-only stop-market order.
func (c *Client) CreateStopMarketOrder(ctx context.Context, symbol string, side domain.Side, quantity, stopPrice string) error {
	_, err := c.api.NewCreateOrderService().
		Symbol(symbol).
		Side(sideOf(side)).
		Type(orderTypeStopMarket).
		StopPrice(stopPrice).
		Quantity(quantity).
		ReduceOnly(true).
		Do(ctx)
	if err != nil {
		return domain.NewFatalExchangeError("create-stop-order", err)
	}
	return nil
}

// CreateTakeProfitOrder places a reduce-only GTC limit order.
func (c *Client) CreateTakeProfitOrder(ctx context.Context, symbol string, side domain.Side, quantity, price string) error {
	_, err := c.api.NewCreateOrderService().
		Symbol(symbol).
		Side(sideOf(side)).
		Type(futures.OrderTypeLimit).
		TimeInForce(futures.TimeInForceTypeGTC).
		Price(price).
		Quantity(quantity).
		ReduceOnly(true).
		Do(ctx)
	if err != nil {
		return domain.NewFatalExchangeError("create-tp-order", err)
	}
	return nil
}

// GetOrder fetches a snapshot of one order's state.
func (c *Client) GetOrder(ctx context.Context, symbol string, orderID int64) (domain.OrderState, error) {
	order, err := c.api.NewGetOrderService().Symbol(symbol).OrderID(orderID).Do(ctx)
	if err != nil {
		return domain.OrderState{}, domain.NewExchangeError("get-order", err)
	}

	avgPrice, _ := strconv.ParseFloat(order.AvgPrice, 64)
	executedQty, _ := strconv.ParseFloat(order.ExecutedQuantity, 64)

	return domain.OrderState{
		OrderID:     order.OrderID,
		Status:      string(order.Status),
		Side:        domain.Side(order.Side),
		AvgPrice:    avgPrice,
		ExecutedQty: executedQty,
	}, nil
}

// CancelOrder cancels one order. Callers on the rescue path tolerate
// "already filled/cancelled" responses themselves.
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	if _, err := c.api.NewCancelOrderService().Symbol(symbol).OrderID(orderID).Do(ctx); err != nil {
		return domain.NewExchangeError("cancel-order", err)
	}
	return nil
}

// CancelAllOpenOrders clears every resting order for the symbol. Used by
// the manual close flow so protective orders never outlive the position.
func (c *Client) CancelAllOpenOrders(ctx context.Context, symbol string) error {
	if err := c.api.NewCancelAllOpenOrdersService().Symbol(symbol).Do(ctx); err != nil {
		return domain.NewExchangeError("cancel-all-orders", err)
	}
	return nil
}
