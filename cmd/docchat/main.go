package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docassist/docchat/internal/adapters/console"
	"github.com/docassist/docchat/internal/bootstrap"
	"github.com/docassist/docchat/internal/config"
	"github.com/docassist/docchat/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup("docchat", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bootstrap.New(cfg)
	defer app.Close()
	app.Start(ctx)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", app.Metrics.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.MetricsAddr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("metrics_listening", "addr", cfg.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics_server_failed", "error", err)
			}
		}()
	}

	ui := console.New(app.Registry, app.Chat, app.Upload, app.Delete, app.Bus, os.Stdin, os.Stdout)
	if err := ui.Run(ctx); err != nil {
		slog.Error("console_failed", "error", err)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
}
