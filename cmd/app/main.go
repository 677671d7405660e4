package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"hermes_go/internal/app"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(ctx); err != nil {
		slog.Error("bootstrapping failed", "error", err)
		os.Exit(1)
	}

	// Prometheus exposition; localhost only.
	if addr := bootstrap.Config.Metrics.ListenAddr; addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			slog.Info("metrics server started", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	go bootstrap.DrainAlerts(ctx)

	// Resume the persisted symbol, if any. The terminal is driven by the
	// presentation layer through Controller calls from here on.
	if err := bootstrap.Controller.AutoActivate(ctx); err != nil {
		slog.Warn("auto-activation failed", "error", err)
	}

	slog.Info("hermes terminal operational")
	<-ctx.Done()

	slog.Info("shutting down")
	bootstrap.Controller.Shutdown()
}
