package app

import (
	"context"
	"log/slog"
	"time"

	"hermes_go/internal/controller"
	"hermes_go/internal/domain"
	"hermes_go/internal/execution"
	"hermes_go/internal/feed"
	"hermes_go/internal/infra"
	"hermes_go/internal/infra/binance"
	"hermes_go/internal/infra/storage"

	"github.com/joho/godotenv"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	Storage    *storage.Storage
	Client     *binance.Client
	Cell       *feed.Cell
	Engine     *execution.Engine
	Controller *controller.Controller
	Alerts     chan domain.Alert
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization: config, logger, storage,
// exchange client and the trading stack on top of them.
func (b *Bootstrap) Initialize(ctx context.Context) error {
	// API keys live in .env, overriding the YAML values when present.
	// A missing .env is fine; keys may come from the real environment.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("bootstrapping", "app", cfg.App.Name, "version", cfg.App.Version)

	store, err := storage.NewStorage()
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("database initialized")

	b.Client = binance.NewClient(cfg.API.Binance.APIKey, cfg.API.Binance.SecretKey, cfg.API.Binance.UseTestnet)
	if cfg.API.Binance.APIKey != "" && cfg.API.Binance.SecretKey != "" {
		if err := b.Client.Connect(ctx); err != nil {
			// Credentials can be fixed at runtime through SetKeys; the
			// terminal still boots, it just cannot trade yet.
			slog.Warn("exchange connection failed", "error", err)
		} else {
			b.Client.StartKeepAlive(ctx, time.Duration(cfg.Trading.KeepAliveSec)*time.Second)
		}
	} else {
		slog.Warn("no API keys configured, trading disabled until keys are set")
	}

	b.Alerts = make(chan domain.Alert, 64)
	b.Cell = feed.NewCell()

	b.Engine = execution.NewEngine(b.Client, execution.Config{
		PollInterval: cfg.FillPollInterval(),
		FillTimeout:  cfg.FillTimeout(),
	}, b.Alerts)

	newWorker := func(symbol string) controller.PriceWorker {
		return feed.NewWorker(symbol, cfg.API.Binance.StreamURL, b.Cell)
	}

	ctrl, err := controller.NewController(
		b.Client, b.Engine, store, b.Cell, newWorker,
		controller.Config{FirstSamplePoll: cfg.FirstSamplePoll()},
		b.Alerts,
	)
	if err != nil {
		return err
	}
	b.Controller = ctrl

	return nil
}

// DrainAlerts logs operator alerts until ctx is cancelled. The presentation
// layer replaces this with real notifications; logging is the floor, not
// the ceiling, for alert-worthy conditions.
func (b *Bootstrap) DrainAlerts(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case alert := <-b.Alerts:
			slog.Error("operator alert",
				"kind", alert.Kind, "symbol", alert.Symbol, "detail", alert.Detail, "error", alert.Err)
		}
	}
}
