// Package execution owns the order lifecycle of one trading action: sizing,
// market submission, bounded fill confirmation, protective orders, and the
// rescue path after a timeout.
package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hermes_go/internal/domain"
	"hermes_go/internal/infra"
)

// OrderAPI is the slice of the exchange REST surface the engine consumes.
// All calls are synchronous request/response.
type OrderAPI interface {
	CreateMarketOrder(ctx context.Context, symbol string, side domain.Side, quantity string, reduceOnly bool) (int64, error)
	CreateStopMarketOrder(ctx context.Context, symbol string, side domain.Side, quantity, stopPrice string) error
	CreateTakeProfitOrder(ctx context.Context, symbol string, side domain.Side, quantity, price string) error
	GetOrder(ctx context.Context, symbol string, orderID int64) (domain.OrderState, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error
	CancelAllOpenOrders(ctx context.Context, symbol string) error
}

// Config bounds the fill-confirmation loop.
type Config struct {
	PollInterval time.Duration // between get-order checks
	FillTimeout  time.Duration // hard deadline before the rescue path runs
}

// Engine drives the per-action state machine. It is not re-entrant: a
// second action while one is in flight is rejected with ErrActionInFlight.
type Engine struct {
	api    OrderAPI
	cfg    Config
	alerts chan<- domain.Alert
	logger *slog.Logger

	mu sync.Mutex // single-flight lock across trading actions
}

// NewEngine wires the engine to an exchange client and an alert channel.
// Alerts are delivered best-effort; a full channel never blocks trading.
func NewEngine(api OrderAPI, cfg Config, alerts chan<- domain.Alert) *Engine {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Millisecond
	}
	if cfg.FillTimeout <= 0 {
		cfg.FillTimeout = 60 * time.Second
	}
	return &Engine{
		api:    api,
		cfg:    cfg,
		alerts: alerts,
		logger: slog.Default().With("module", "execution"),
	}
}

// PlaceMarketOrder runs one full trading action: size the intent at the
// given live price, submit a market order, wait for the fill, then attach
// stop-loss and take-profit orders.
//
// On fill-wait timeout the rescue path cancels the remainder and flattens
// whatever quantity did fill, and ErrFillTimeout is returned. Submission
// failure aborts the action with nothing to clean up. prec may be nil when
// the symbol had no metadata; sizing then skips rounding.
func (e *Engine) PlaceMarketOrder(ctx context.Context, intent domain.OrderIntent, livePrice float64, prec *domain.SymbolPrecision) (*domain.ExecutedEntry, error) {
	if !e.mu.TryLock() {
		return nil, domain.ErrActionInFlight
	}
	defer e.mu.Unlock()

	if err := intent.Validate(); err != nil {
		return nil, err
	}

	quantity, err := ComputeQuantity(intent.NotionalUSD, livePrice, prec)
	if err != nil {
		return nil, err
	}
	quantityStr := FormatQuantity(quantity, prec)

	orderID, err := e.api.CreateMarketOrder(ctx, intent.Symbol, intent.Side, quantityStr, false)
	if err != nil {
		return nil, err
	}
	infra.MtxOrders.WithLabelValues(string(intent.Side)).Inc()
	e.logger.Info("market order submitted",
		"symbol", intent.Symbol, "side", intent.Side, "quantity", quantityStr, "order_id", orderID)

	state, filled := e.awaitFill(ctx, intent.Symbol, orderID)
	if !filled {
		e.logger.Warn("fill confirmation timed out, rescuing",
			"symbol", intent.Symbol, "order_id", orderID)
		if rescueErr := e.rescue(ctx, intent.Symbol, orderID, prec); rescueErr != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrFillTimeout, rescueErr)
		}
		return nil, domain.ErrFillTimeout
	}

	infra.MtxFills.WithLabelValues(string(intent.Side)).Inc()
	entry := &domain.ExecutedEntry{
		OrderID:      orderID,
		Symbol:       intent.Symbol,
		Side:         intent.Side,
		Quantity:     quantityStr,
		AvgFillPrice: state.AvgPrice,
	}
	e.logger.Info("entry filled",
		"symbol", entry.Symbol, "order_id", entry.OrderID, "avg_price", entry.AvgFillPrice)

	e.protect(ctx, entry, intent, prec)
	return entry, nil
}

// awaitFill polls order status until terminal FILLED or the deadline.
// "Not yet filled" responses and transient get-order errors are expected;
// the deadline bounds both.
func (e *Engine) awaitFill(ctx context.Context, symbol string, orderID int64) (domain.OrderState, bool) {
	deadline := time.Now().Add(e.cfg.FillTimeout)
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return domain.OrderState{}, false
		case <-ticker.C:
		}

		state, err := e.api.GetOrder(ctx, symbol, orderID)
		if err != nil {
			continue
		}
		if state.Filled() {
			return state, true
		}
	}
	return domain.OrderState{}, false
}

// protect attaches the stop-loss and take-profit pair to a filled entry.
// Both are reduce-only, sized to the entry quantity, on the opposite side.
// Submission order is fixed (stop first) and each leg is best-effort: a
// failure is alerted and swallowed, never unwinding the entry.
func (e *Engine) protect(ctx context.Context, entry *domain.ExecutedEntry, intent domain.OrderIntent, prec *domain.SymbolPrecision) {
	closeSide := entry.Side.Opposite()

	stopPrice := entry.AvgFillPrice * (1 - intent.StopLossPct/100)
	takeProfitPrice := entry.AvgFillPrice * (1 + intent.TakeProfitPct/100)
	if entry.Side == domain.SideSell {
		stopPrice = entry.AvgFillPrice * (1 + intent.StopLossPct/100)
		takeProfitPrice = entry.AvgFillPrice * (1 - intent.TakeProfitPct/100)
	}

	if err := e.api.CreateStopMarketOrder(ctx, entry.Symbol, closeSide, entry.Quantity, FormatPrice(stopPrice, prec)); err != nil {
		e.reportProtectionFailure(entry.Symbol, "stop_loss", err)
	}
	if err := e.api.CreateTakeProfitOrder(ctx, entry.Symbol, closeSide, entry.Quantity, FormatPrice(takeProfitPrice, prec)); err != nil {
		e.reportProtectionFailure(entry.Symbol, "take_profit", err)
	}
}

func (e *Engine) reportProtectionFailure(symbol, leg string, err error) {
	infra.MtxProtectionFailures.WithLabelValues(leg).Inc()
	e.logger.Error("protective order failed", "symbol", symbol, "leg", leg, "error", err)
	e.sendAlert(domain.NewAlert(domain.AlertProtectionFailed, symbol,
		"position is open without "+leg+" protection", err))
}

// rescue runs after the fill-wait deadline: cancel the presumed-stale order,
// then flatten whatever quantity did fill. Cancel rejection is expected when
// the order completed in the meantime; a failure to flatten a confirmed
// non-zero fill is a reportable fault.
func (e *Engine) rescue(ctx context.Context, symbol string, orderID int64, prec *domain.SymbolPrecision) error {
	if err := e.api.CancelOrder(ctx, symbol, orderID); err != nil {
		// Already filled or already cancelled; the flatten step below works
		// from the order's actual executed quantity either way.
		e.logger.Info("rescue cancel rejected", "symbol", symbol, "order_id", orderID, "error", err)
	}

	state, err := e.api.GetOrder(ctx, symbol, orderID)
	if err != nil {
		infra.MtxRescues.WithLabelValues("failed").Inc()
		e.sendAlert(domain.NewAlert(domain.AlertFlattenFailed, symbol,
			"could not determine executed quantity after timeout", err))
		return fmt.Errorf("%w: %w", domain.ErrFlattenFailed, err)
	}

	if state.ExecutedQty <= 0 {
		infra.MtxRescues.WithLabelValues("clean").Inc()
		e.logger.Info("rescue complete, nothing filled", "symbol", symbol, "order_id", orderID)
		return nil
	}

	quantityStr := FormatQuantity(state.ExecutedQty, prec)
	if _, err := e.api.CreateMarketOrder(ctx, symbol, state.Side.Opposite(), quantityStr, true); err != nil {
		infra.MtxRescues.WithLabelValues("failed").Inc()
		e.sendAlert(domain.NewAlert(domain.AlertFlattenFailed, symbol,
			"partial fill of "+quantityStr+" is still open", err))
		return fmt.Errorf("%w: %w", domain.ErrFlattenFailed, err)
	}

	infra.MtxRescues.WithLabelValues("flattened").Inc()
	e.logger.Info("rescue flattened partial fill",
		"symbol", symbol, "order_id", orderID, "quantity", quantityStr)
	return nil
}

// ClosePosition flattens a previously filled entry with one reduce-only
// market order on the opposite side for its executed quantity. Resting
// protective orders for the symbol are cancelled first so they cannot
// outlive the position. A zero executed quantity is a no-op.
func (e *Engine) ClosePosition(ctx context.Context, entry *domain.ExecutedEntry, prec *domain.SymbolPrecision) error {
	if entry == nil {
		return domain.ErrNoEntry
	}
	if !e.mu.TryLock() {
		return domain.ErrActionInFlight
	}
	defer e.mu.Unlock()

	if err := e.api.CancelAllOpenOrders(ctx, entry.Symbol); err != nil {
		// Protective legs may already be gone; closing matters more.
		e.logger.Warn("cancel of resting orders failed", "symbol", entry.Symbol, "error", err)
	}

	state, err := e.api.GetOrder(ctx, entry.Symbol, entry.OrderID)
	if err != nil {
		return err
	}
	if state.ExecutedQty <= 0 {
		e.logger.Info("nothing to close, order never executed",
			"symbol", entry.Symbol, "order_id", entry.OrderID)
		return nil
	}

	quantityStr := FormatQuantity(state.ExecutedQty, prec)
	if _, err := e.api.CreateMarketOrder(ctx, entry.Symbol, state.Side.Opposite(), quantityStr, true); err != nil {
		return err
	}

	infra.MtxManualCloses.Inc()
	e.logger.Info("position closed",
		"symbol", entry.Symbol, "order_id", entry.OrderID, "quantity", quantityStr)
	return nil
}

func (e *Engine) sendAlert(alert domain.Alert) {
	if e.alerts == nil {
		return
	}
	select {
	case e.alerts <- alert:
	default:
	}
}
