package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"calculator-api/internal/config"
	"calculator-api/internal/observability"
	"calculator-api/internal/server"
	"calculator-api/internal/session"
)

func main() {

	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx := context.Background()

	// Logger
	err = observability.InitLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, metrics, log export
	telemetryShutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			observability.Logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	// Sessions
	store := session.NewStore(session.Options{
		IdleTTL:     cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
	})
	if err := session.RegisterCollectors(prometheus.DefaultRegisterer, store); err != nil {
		panic(err)
	}

	janitor, err := session.NewJanitor(store, cfg.SweepInterval, observability.Logger)
	if err != nil {
		panic(err)
	}
	janitor.Start()
	defer func() {
		if err := janitor.Stop(); err != nil {
			observability.Logger.Warn("janitor shutdown", zap.Error(err))
		}
	}()

	// Router
	router := server.NewRouter(store)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.Duration("session_ttl", cfg.SessionTTL),
			zap.Int("max_sessions", cfg.MaxSessions),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	waitForShutdown(srv, cfg.ShutdownTimeout)
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Warn("server shutdown", zap.Error(err))
	}
}
