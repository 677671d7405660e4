// Package controller owns the operator-facing session: the active symbol,
// its precision, the price worker lifecycle, the trading parameters, and
// the last tracked entry. It wires operator actions to the execution engine
// and never blocks on the price stream.
package controller

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"hermes_go/internal/domain"
	"hermes_go/internal/feed"
	"hermes_go/internal/infra"
)

// ExchangeMeta is the reference-data slice of the exchange client.
type ExchangeMeta interface {
	IsConnected() bool
	SymbolExists(ctx context.Context, symbol string) (bool, error)
	ResolvePrecision(ctx context.Context, symbol string) (domain.SymbolPrecision, bool, error)
}

// TradeEngine is the execution surface the controller drives.
type TradeEngine interface {
	PlaceMarketOrder(ctx context.Context, intent domain.OrderIntent, livePrice float64, prec *domain.SymbolPrecision) (*domain.ExecutedEntry, error)
	ClosePosition(ctx context.Context, entry *domain.ExecutedEntry, prec *domain.SymbolPrecision) error
}

// SettingsStore persists operator settings and the tracked entry.
type SettingsStore interface {
	SaveSetting(key, value string) error
	LoadSettingsMap() (map[string]string, error)
	SaveTrackedEntry(entry *domain.ExecutedEntry) error
	GetTrackedEntry() (*domain.ExecutedEntry, error)
	ClearTrackedEntry() error
}

// PriceWorker is one stream-worker lifetime. Done is closed when the worker
// has terminated for any reason.
type PriceWorker interface {
	Connect(ctx context.Context) error
	Done() <-chan struct{}
	Disconnect()
}

// WorkerFactory builds a fresh worker for a symbol. Exactly one worker
// writes into the shared cell at a time; the controller enforces this by
// fully stopping the old worker before starting a new one.
type WorkerFactory func(symbol string) PriceWorker

// Config tunes the controller's timers.
type Config struct {
	FirstSamplePoll time.Duration // readiness check interval while activating
}

// Session is the explicit state of the terminal: what symbol is live, with
// which rounding rules, and which entry is currently tracked.
type Session struct {
	Symbol    string
	Precision *domain.SymbolPrecision // nil when metadata had no entry
	Active    bool
	LastEntry *domain.ExecutedEntry
}

// Controller wires the pieces together. All exported methods are safe for
// concurrent use from the presentation layer.
type Controller struct {
	meta      ExchangeMeta
	engine    TradeEngine
	store     SettingsStore
	cell      *feed.Cell
	newWorker WorkerFactory
	cfg       Config
	alerts    chan<- domain.Alert
	logger    *slog.Logger

	// actMu serializes the stop-worker/reset-ready/start-worker sequence of
	// activation and shutdown. Without it two concurrent activations can
	// both decide to restart and the losing worker keeps writing into the
	// cell with nothing left holding a handle to stop it.
	actMu sync.Mutex

	mu          sync.Mutex
	session     Session
	worker      PriceWorker
	watchCancel context.CancelFunc

	notionalUSD   float64
	stopLossPct   float64
	takeProfitPct float64
}

// NewController builds a controller and restores persisted settings and the
// tracked entry. Nothing is activated yet; call AutoActivate for that.
func NewController(meta ExchangeMeta, engine TradeEngine, store SettingsStore, cell *feed.Cell, newWorker WorkerFactory, cfg Config, alerts chan<- domain.Alert) (*Controller, error) {
	if cfg.FirstSamplePoll <= 0 {
		cfg.FirstSamplePoll = 100 * time.Millisecond
	}

	c := &Controller{
		meta:      meta,
		engine:    engine,
		store:     store,
		cell:      cell,
		newWorker: newWorker,
		cfg:       cfg,
		alerts:    alerts,
		logger:    slog.Default().With("module", "controller"),
	}

	settings, err := store.LoadSettingsMap()
	if err != nil {
		return nil, err
	}
	c.session.Symbol = settings[domain.SettingSymbol]
	c.notionalUSD = parseFloatSetting(settings, domain.SettingNotionalUSD)
	c.stopLossPct = parseFloatSetting(settings, domain.SettingStopLossPct)
	c.takeProfitPct = parseFloatSetting(settings, domain.SettingTakeProfitPct)

	entry, err := store.GetTrackedEntry()
	if err != nil {
		return nil, err
	}
	c.session.LastEntry = entry

	return c, nil
}

func parseFloatSetting(settings map[string]string, key string) float64 {
	v, err := strconv.ParseFloat(settings[key], 64)
	if err != nil {
		return 0
	}
	return v
}

// Session returns a copy of the current session state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// IsActive reports whether the symbol pair is fully activated: existence
// confirmed, precision resolved, and at least one price sample received.
func (c *Controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Active
}

// AutoActivate runs the activation pipeline for the persisted symbol, if
// any. Called once at startup.
func (c *Controller) AutoActivate(ctx context.Context) error {
	c.mu.Lock()
	symbol := c.session.Symbol
	c.mu.Unlock()

	if symbol == "" {
		return nil
	}
	c.logger.Info("auto-activating persisted symbol", "symbol", symbol)
	return c.ActivateSymbol(ctx, symbol)
}

// ActivateSymbol runs the activation pipeline for a symbol, in strict
// order: existence check, precision resolution, then stream start. A
// failure at any step prevents the later steps from running. The pair only
// becomes active once the new worker delivers its first sample; that wait
// is timer-driven and does not block this call or other operator actions.
//
// Re-activating the current symbol restarts the wait without restarting a
// healthy worker; a different symbol fully stops the old worker and resets
// cell readiness before the new one starts.
func (c *Controller) ActivateSymbol(ctx context.Context, symbol string) error {
	if symbol == "" {
		return &domain.ValidationError{Field: "symbol", Reason: "empty"}
	}
	if !c.meta.IsConnected() {
		return domain.ErrNotConnected
	}

	c.actMu.Lock()
	defer c.actMu.Unlock()

	exists, err := c.meta.SymbolExists(ctx, symbol)
	if err != nil {
		return err
	}
	if !exists {
		// An invalid symbol also tears down whatever was running, so the
		// UI never shows a stale "active" pair for a dead input.
		c.deactivate()
		return domain.ErrSymbolNotFound
	}

	prec, found, err := c.meta.ResolvePrecision(ctx, symbol)
	if err != nil {
		return err
	}
	var precision *domain.SymbolPrecision
	if found {
		precision = &prec
		c.logger.Info("precision resolved", "symbol", symbol,
			"quantity_decimals", prec.QuantityDecimals, "price_decimals", prec.PriceDecimals)
	} else {
		c.logger.Warn("no precision metadata, sizing without rounding", "symbol", symbol)
	}

	c.mu.Lock()
	restart := c.worker == nil || c.session.Symbol != symbol || !c.workerAlive()
	c.stopWatchersLocked()
	c.session.Active = false
	infra.MtxSymbolActive.Set(0)
	c.session.Symbol = symbol
	c.session.Precision = precision
	c.mu.Unlock()

	if err := c.store.SaveSetting(domain.SettingSymbol, symbol); err != nil {
		c.logger.Warn("failed to persist symbol", "error", err)
	}

	if restart {
		c.stopWorker()
		// Stale readiness from the previous symbol must not be misread as
		// the new symbol's first tick.
		c.cell.ResetReady()

		worker := c.newWorker(symbol)
		if err := worker.Connect(ctx); err != nil {
			return err
		}
		c.mu.Lock()
		c.worker = worker
		c.mu.Unlock()
	}

	c.startWatchers(ctx, symbol)
	return nil
}

// workerAlive must be called with c.mu held.
func (c *Controller) workerAlive() bool {
	if c.worker == nil {
		return false
	}
	select {
	case <-c.worker.Done():
		return false
	default:
		return true
	}
}

// startWatchers launches the readiness waiter and the worker-exit watcher
// for the current worker lifetime.
func (c *Controller) startWatchers(ctx context.Context, symbol string) {
	watchCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.watchCancel = cancel
	worker := c.worker
	c.mu.Unlock()

	// Readiness waiter: recurring timer check, never a blocking wait.
	go func() {
		ticker := time.NewTicker(c.cfg.FirstSamplePoll)
		defer ticker.Stop()
		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
				if !c.cell.IsReady() {
					continue
				}
				c.mu.Lock()
				c.session.Active = true
				c.mu.Unlock()
				infra.MtxSymbolActive.Set(1)
				c.logger.Info("first price received, symbol activated", "symbol", symbol)
				return
			}
		}
	}()

	// Exit watcher: a dead stream must surface, never a silently stale cell.
	go func() {
		select {
		case <-watchCtx.Done():
			return
		case <-worker.Done():
			infra.MtxStreamDrops.Inc()
			c.mu.Lock()
			c.session.Active = false
			c.mu.Unlock()
			infra.MtxSymbolActive.Set(0)
			c.logger.Error("price stream terminated, symbol marked inactive", "symbol", symbol)
			c.sendAlert(domain.NewAlert(domain.AlertStreamDown, symbol,
				"price stream terminated; re-activate to resume", nil))
		}
	}()
}

// stopWatchersLocked must be called with c.mu held.
func (c *Controller) stopWatchersLocked() {
	if c.watchCancel != nil {
		c.watchCancel()
		c.watchCancel = nil
	}
}

// stopWorker fully terminates the current worker, blocking until its
// resources are released, so two workers never publish into the same cell.
func (c *Controller) stopWorker() {
	c.mu.Lock()
	worker := c.worker
	c.worker = nil
	c.mu.Unlock()

	if worker != nil {
		worker.Disconnect()
	}
}

// deactivate tears the session down to inactive. Callers hold actMu.
func (c *Controller) deactivate() {
	c.mu.Lock()
	c.stopWatchersLocked()
	c.session.Active = false
	c.mu.Unlock()
	infra.MtxSymbolActive.Set(0)
	c.stopWorker()
	c.cell.ResetReady()
}

// Shutdown stops the worker and watchers. The controller is not reusable
// afterwards.
func (c *Controller) Shutdown() {
	c.actMu.Lock()
	defer c.actMu.Unlock()
	c.deactivate()
}

// Buy submits a market BUY entry at the current live price.
func (c *Controller) Buy(ctx context.Context) (*domain.ExecutedEntry, error) {
	return c.place(ctx, domain.SideBuy)
}

// Sell submits a market SELL entry at the current live price.
func (c *Controller) Sell(ctx context.Context) (*domain.ExecutedEntry, error) {
	return c.place(ctx, domain.SideSell)
}

func (c *Controller) place(ctx context.Context, side domain.Side) (*domain.ExecutedEntry, error) {
	if !c.meta.IsConnected() {
		return nil, domain.ErrNotConnected
	}

	c.mu.Lock()
	if !c.session.Active {
		c.mu.Unlock()
		return nil, domain.ErrNotActivated
	}
	intent := domain.OrderIntent{
		Symbol:        c.session.Symbol,
		Side:          side,
		NotionalUSD:   c.notionalUSD,
		StopLossPct:   c.stopLossPct,
		TakeProfitPct: c.takeProfitPct,
	}
	precision := c.session.Precision
	c.mu.Unlock()

	sample := c.cell.Read()
	if !c.cell.IsReady() || !sample.Valid() {
		return nil, domain.ErrNotActivated
	}

	entry, err := c.engine.PlaceMarketOrder(ctx, intent, sample.Value, precision)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session.LastEntry = entry
	c.mu.Unlock()
	if err := c.store.SaveTrackedEntry(entry); err != nil {
		c.logger.Warn("failed to persist tracked entry", "error", err)
	}
	return entry, nil
}

// ClosePosition flattens the tracked entry. A no-op when nothing is
// tracked; the tracked entry is cleared only after a successful close.
func (c *Controller) ClosePosition(ctx context.Context) error {
	c.mu.Lock()
	entry := c.session.LastEntry
	precision := c.session.Precision
	c.mu.Unlock()

	if entry == nil {
		return nil
	}

	if err := c.engine.ClosePosition(ctx, entry, precision); err != nil {
		return err
	}

	c.mu.Lock()
	c.session.LastEntry = nil
	c.mu.Unlock()
	if err := c.store.ClearTrackedEntry(); err != nil {
		c.logger.Warn("failed to clear tracked entry", "error", err)
	}
	return nil
}

// SetNotionalUSD validates and persists the per-trade notional.
func (c *Controller) SetNotionalUSD(v float64) error {
	if v <= 0 {
		return &domain.ValidationError{Field: "notional_usd", Reason: "must be positive"}
	}
	c.mu.Lock()
	c.notionalUSD = v
	c.mu.Unlock()
	return c.store.SaveSetting(domain.SettingNotionalUSD, formatFloat(v))
}

// SetStopLossPct validates and persists the stop-loss percentage.
func (c *Controller) SetStopLossPct(v float64) error {
	if v <= 0 || v >= 100 {
		return &domain.ValidationError{Field: "stop_loss_pct", Reason: "must be in (0, 100)"}
	}
	c.mu.Lock()
	c.stopLossPct = v
	c.mu.Unlock()
	return c.store.SaveSetting(domain.SettingStopLossPct, formatFloat(v))
}

// SetTakeProfitPct validates and persists the take-profit percentage.
func (c *Controller) SetTakeProfitPct(v float64) error {
	if v <= 0 || v > 100 {
		return &domain.ValidationError{Field: "take_profit_pct", Reason: "must be in (0, 100]"}
	}
	c.mu.Lock()
	c.takeProfitPct = v
	c.mu.Unlock()
	return c.store.SaveSetting(domain.SettingTakeProfitPct, formatFloat(v))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *Controller) sendAlert(alert domain.Alert) {
	if c.alerts == nil {
		return
	}
	select {
	case c.alerts <- alert:
	default:
	}
}
