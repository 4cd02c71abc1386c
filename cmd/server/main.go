package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Jim-devENG/ispora-engine-sub009/config"
	configPostgre "github.com/Jim-devENG/ispora-engine-sub009/config/postgre"
	configRedis "github.com/Jim-devENG/ispora-engine-sub009/config/redis"
	"github.com/Jim-devENG/ispora-engine-sub009/internal/httpserver"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/jwt"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config:", err)
		os.Exit(1)
	}

	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof(ctx, "Starting realtime service (%s)", cfg.Environment.Name)

	redisClient, err := configRedis.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Errorf(ctx, "Failed to connect to Redis: %v", err)
		return
	}
	defer redisClient.Close()
	logger.Infof(ctx, "Redis connected to %s:%d", cfg.Redis.Host, cfg.Redis.Port)

	var db *sql.DB
	if cfg.Postgres.Enabled() {
		db, err = configPostgre.Connect(ctx, cfg.Postgres)
		if err != nil {
			logger.Errorf(ctx, "Failed to connect to PostgreSQL: %v", err)
			return
		}
		defer db.Close()
		logger.Infof(ctx, "PostgreSQL connected to %s:%d/%s", cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	} else {
		logger.Warn(ctx, "POSTGRES_HOST not set, account and entity lookups are disabled")
	}

	verifier, err := jwt.NewVerifier(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
		Issuer:    cfg.JWT.Issuer,
		Leeway:    cfg.JWT.Leeway,
	})
	if err != nil {
		logger.Errorf(ctx, "Failed to initialize JWT verifier: %v", err)
		return
	}

	srv, err := httpserver.New(logger, httpserver.Config{
		App:      cfg,
		Verifier: verifier,
		Redis:    redisClient,
		Postgres: db,
	})
	if err != nil {
		logger.Errorf(ctx, "Failed to create HTTP server: %v", err)
		return
	}

	if err := srv.Run(ctx); err != nil {
		logger.Errorf(ctx, "Server stopped with error: %v", err)
		return
	}
	logger.Info(context.Background(), "Realtime service stopped")
}
