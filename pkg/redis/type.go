package redis

import (
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Config holds the client options exposed through the service config.
type Config struct {
	Host            string
	Port            int
	Password        string
	DB              int
	UseTLS          bool
	MaxRetries      int
	MinIdleConns    int
	PoolSize        int
	PoolTimeout     time.Duration
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// Client wraps the go-redis client with latency aware pings.
type Client struct {
	*goredis.Client
	cfg Config
}
