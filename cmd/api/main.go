package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hakan-sariman/webhook-inbox/internal/api"
	"github.com/hakan-sariman/webhook-inbox/internal/cache"
	"github.com/hakan-sariman/webhook-inbox/internal/config"
	"github.com/hakan-sariman/webhook-inbox/internal/logx"
	"github.com/hakan-sariman/webhook-inbox/internal/metrics"
	"github.com/hakan-sariman/webhook-inbox/internal/service"
	postgresstorage "github.com/hakan-sariman/webhook-inbox/internal/storage/postgres"
	"go.uber.org/zap"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// run migrations before db pool is used
func runMigrations(dbURL string, logger *zap.Logger) {
	m, err := migrate.New(
		"file://internal/storage/migrations",
		dbURL,
	)
	if err != nil {
		logger.Fatal("failed to initialize migrations", zap.Error(err))
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Fatal("migration error", zap.Error(err))
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("load config: %w", err))
	}

	logger, err := logx.New(cfg.App.Env)
	if err != nil {
		panic(fmt.Errorf("init logger: %w", err))
	}

	runMigrations(cfg.Postgres.URL, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// postgres
	db, err := postgresstorage.New(ctx, cfg.Postgres.URL, cfg.Postgres.MaxOpenConns, logger)
	if err != nil {
		logger.Fatal("postgres connect", zap.Error(err))
	}
	defer db.Close()

	// redis: advisory duplicate cache, optional
	var seenCache service.SeenCache
	if cfg.Redis.Addr != "" {
		redisClient := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.DB)
		defer redisClient.Close()
		seenCache = redisClient
	}

	m := metrics.New()

	msgSvc := service.NewMessageService(service.Config{
		Secret:   cfg.Webhook.Secret,
		CacheTTL: cfg.Redis.TTL,
	}, db, seenCache, logger)

	// HTTP server
	srv := api.NewServer(api.ServerCfg{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		MaxBodyBytes: cfg.Webhook.MaxBodyBytes,
	}, msgSvc, m, logger)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(shutdownCtx)
	logger.Sync()
}
