// Package main is the entry point for the background worker. It relays
// outbox events to the notification inbox, the audit log and Redis.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harpreet-2146/FM-demo-sub001/internal/app"
	"github.com/harpreet-2146/FM-demo-sub001/internal/config"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

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
		log.Errorw("worker failed", "error", err)
		os.Exit(1)
	}
	log.Info("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if cfg.Storage != config.StoragePostgres {
		return errors.New("worker needs STORAGE=postgres")
	}

	rt, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	w := &Worker{
		relay: postgres.NewOutboxRelay(rt.TxManager, rt.Services.Dispatcher, postgres.RelayOptions{
			BatchSize:  cfg.WorkerBatchSize,
			MaxRetries: cfg.WorkerMaxRetries,
		}),
		idempotency: postgres.NewIdempotencyStore(rt.TxManager, cfg.IdempotencyTTL),
		pool:        rt.Pool,
		cfg:         cfg,
		log:         log.WithComponent("worker"),
	}

	log.Infow("starting worker",
		"poll_interval", cfg.WorkerPollInterval,
		"batch_size", cfg.WorkerBatchSize,
		"redis", rt.Redis != nil,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.RunRelay(ctx) })
	g.Go(func() error { return w.RunSweeper(ctx) })
	return g.Wait()
}

// Worker drains the outbox and keeps the system tables small.
type Worker struct {
	relay       *postgres.OutboxRelay
	idempotency *postgres.IdempotencyStore
	pool        *postgres.Pool
	cfg         *config.Config
	log         *logger.Logger
}

// RunRelay polls the outbox until ctx is done. A full batch is followed
// immediately by the next one.
func (w *Worker) RunRelay(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.WorkerPollInterval)
	defer ticker.Stop()

	for {
		for {
			n, err := w.relay.ProcessBatch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.log.Errorw("outbox batch failed", "error", err)
				break
			}
			if n > 0 {
				w.log.Debugw("outbox batch delivered", "count", n)
			}
			if n < w.cfg.WorkerBatchSize {
				break
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunSweeper moves exhausted messages to the dead letter table and deletes
// expired idempotency keys and old published messages.
func (w *Worker) RunSweeper(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.WorkerSweep)
	defer ticker.Stop()

	for {
		w.sweep(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	if n, err := w.relay.MoveToDLQ(ctx); err != nil {
		w.log.Errorw("move to dead letters failed", "error", err)
	} else if n > 0 {
		w.log.Warnw("outbox messages dead-lettered", "count", n)
	}

	if n, err := w.idempotency.CleanupExpired(ctx); err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
	} else if n > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", n)
	}

	if n, err := w.relay.PurgePublished(ctx, w.cfg.WorkerRetention); err != nil {
		w.log.Errorw("outbox purge failed", "error", err)
	} else if n > 0 {
		w.log.Infow("purged published outbox messages", "count", n)
	}

	w.pool.LogStats(ctx)
}
