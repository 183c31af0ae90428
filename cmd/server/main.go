package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/iammorganparry/pof-dashboard/internal/api"
	"github.com/iammorganparry/pof-dashboard/internal/clock"
	"github.com/iammorganparry/pof-dashboard/internal/config"
	"github.com/iammorganparry/pof-dashboard/internal/dashboard"
	"github.com/iammorganparry/pof-dashboard/internal/events"
	"github.com/iammorganparry/pof-dashboard/internal/sessions"
	"github.com/iammorganparry/pof-dashboard/internal/ui"
)

func main() {
	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Logger
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	page, err := ui.Page(cfg.UIPath)
	if err != nil {
		logger.Error("failed to load dashboard page", "error", err)
		os.Exit(1)
	}

	// Registry
	clk := clock.Real()
	broadcaster := events.NewBroadcaster(logger)
	store := sessions.NewStore(broadcaster, clk, logger)
	svc := dashboard.NewService(store, broadcaster, clk, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go sessions.NewSweeper(store, clk, logger).Run(ctx)

	// Router
	shutdownRequested := make(chan struct{})
	var once sync.Once
	router := api.NewRouter(svc, page, func() {
		once.Do(func() { close(shutdownRequested) })
	}, logger)

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("dashboard starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	select {
	case <-done:
	case <-shutdownRequested:
	}
	logger.Info("shutting down...")

	stop()
	svc.CloseStreams()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
