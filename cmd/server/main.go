// Package main is the entry point for the API server.
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

	"golang.org/x/sync/errgroup"

	"github.com/harpreet-2146/FM-demo-sub001/internal/app"
	"github.com/harpreet-2146/FM-demo-sub001/internal/config"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/idempotency"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/cache"
	v1 "github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/handlers"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Errorw("server failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Infow("starting server", "version", version, "storage", cfg.Storage)

	rt, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	checks := map[string]handlers.Pinger{}
	if rt.Pool != nil {
		checks["database"] = rt.Pool
	}
	if rt.Redis != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rt.Redis.Ping(ctx).Err()
		})
	}

	router, err := v1.NewRouter(v1.RouterConfig{
		Services:    rt.Services,
		Numerator:   rt.Backend.Numerator,
		Logger:      log,
		Idempotency: idempotencyStore(rt),
		Health:      checks,
		Version:     version,
		Storage:     cfg.Storage,
		Debug:       !cfg.IsProduction(),
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("server listening", "port", cfg.AppPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// idempotencyStore prefers Redis and falls back to the sys_idempotency table.
func idempotencyStore(rt *app.Runtime) idempotency.Store {
	switch {
	case !rt.Config.IdempotencyEnabled:
		return nil
	case rt.Redis != nil:
		return cache.NewIdempotencyStore(rt.Redis, rt.Config.IdempotencyTTL)
	case rt.TxManager != nil:
		return postgres.NewIdempotencyStore(rt.TxManager, rt.Config.IdempotencyTTL)
	}
	return nil
}
