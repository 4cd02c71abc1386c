package redis

import (
	"context"

	"github.com/Jim-devENG/ispora-engine-sub009/config"
	pkgRedis "github.com/Jim-devENG/ispora-engine-sub009/pkg/redis"
)

// Connect builds the Redis client used for producer ingress and health checks.
func Connect(ctx context.Context, cfg config.RedisConfig) (*pkgRedis.Client, error) {
	return pkgRedis.NewClient(ctx, pkgRedis.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Password:        cfg.Password,
		DB:              cfg.DB,
		UseTLS:          cfg.UseTLS,
		MaxRetries:      cfg.MaxRetries,
		MinIdleConns:    cfg.MinIdleConns,
		PoolSize:        cfg.PoolSize,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
}
