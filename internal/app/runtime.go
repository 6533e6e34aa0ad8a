package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/harpreet-2146/FM-demo-sub001/internal/config"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/cache"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/memory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/storage/postgres"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// Runtime is everything a process opened from its configuration.
type Runtime struct {
	Config   *config.Config
	Backend  Backend
	Services *Services

	// Set for the postgres backend.
	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	// Set for the memory backend.
	Memory *memory.Store
	// Set when Redis is configured.
	Redis *redis.Client
}

// Open connects the configured storage and Redis and assembles the services.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Runtime, error) {
	rt := &Runtime{Config: cfg}

	if cfg.RedisEnabled() {
		client, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		rt.Redis = client
		log.Infow("redis connection established", "addr", cfg.RedisAddr)
	}

	switch cfg.Storage {
	case config.StoragePostgres:
		poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
		poolCfg.MaxConns = cfg.DBMaxConns
		poolCfg.MinConns = cfg.DBMinConns
		poolCfg.MaxConnLifetime = cfg.DBConnLifetime

		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect database: %w", err)
		}
		rt.Pool = pool
		rt.TxManager = postgres.NewTxManager(pool)

		rt.Backend, err = PostgresBackend(rt.TxManager, PostgresOptions{
			Location:               cfg.Location(),
			UseOutbox:              cfg.UseOutbox,
			AuditCompressThreshold: cfg.AuditCompressMin,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		log.Infow("database connection established", "max_conns", poolCfg.MaxConns, "outbox", cfg.UseOutbox)

	case config.StorageMemory:
		// Nothing outlives the process, so there is no worker to drain an outbox.
		rt.Memory = memory.New()
		rt.Backend = MemoryBackend(rt.Memory, cfg.Location(), false)
		log.Warn("using in-memory storage; data is lost on exit")
	}

	opts := DefaultOptions(cfg.JWTSecret)
	opts.JWT.AccessTokenTTL = cfg.JWTTTL
	if rt.Redis != nil {
		opts.Sinks = append(opts.Sinks, cache.NewFanOut(rt.Redis))
	}
	rt.Services = NewServices(rt.Backend, opts)

	if cfg.BootstrapAdminEmail != "" {
		admin, err := rt.Services.Auth.Bootstrap(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminName, cfg.BootstrapAdminPassword)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		log.Infow("admin account ready", "email", admin.Email)
	}

	return rt, nil
}

// Close releases connections.
func (rt *Runtime) Close() {
	if rt.Pool != nil {
		rt.Pool.Close()
	}
	if rt.Redis != nil {
		_ = rt.Redis.Close()
	}
}
