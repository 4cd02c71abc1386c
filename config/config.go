package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment EnvironmentConfig
	Server      ServerConfig
	Logger      LoggerConfig

	Redis    RedisConfig
	Postgres PostgresConfig

	WebSocket WebSocketConfig
	SSE       SSEConfig
	Heartbeat HeartbeatConfig

	JWT    JWTConfig
	Cookie CookieConfig
	CORS   CORSConfig
}

// EnvironmentConfig drives environment aware defaults such as the origin policy.
type EnvironmentConfig struct {
	Name string `env:"ENV" envDefault:"production"`
}

type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"8081"`
	Mode            string        `env:"GIN_MODE" envDefault:"release"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type LoggerConfig struct {
	Level        string `env:"LOGGER_LEVEL" envDefault:"info"`
	Mode         string `env:"LOGGER_MODE" envDefault:"production"`
	Encoding     string `env:"LOGGER_ENCODING" envDefault:"json"`
	ColorEnabled bool   `env:"LOGGER_COLOR_ENABLED" envDefault:"false"`
}

// RedisConfig is used for producer ingress. Standalone mode only.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	UseTLS   bool   `env:"REDIS_USE_TLS" envDefault:"false"`

	MaxRetries      int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	MinIdleConns    int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"10"`
	PoolSize        int           `env:"REDIS_POOL_SIZE" envDefault:"100"`
	PoolTimeout     time.Duration `env:"REDIS_POOL_TIMEOUT" envDefault:"4s"`
	ConnMaxIdleTime time.Duration `env:"REDIS_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"REDIS_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// PostgresConfig is optional. An empty host disables the record store.
type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	DBName   string `env:"POSTGRES_DB"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
}

type WebSocketConfig struct {
	WriteWait       time.Duration `env:"WS_WRITE_WAIT" envDefault:"10s"`
	MaxMessageSize  int64         `env:"WS_MAX_MESSAGE_SIZE" envDefault:"65536"`
	ReadBufferSize  int           `env:"WS_READ_BUFFER_SIZE" envDefault:"1024"`
	WriteBufferSize int           `env:"WS_WRITE_BUFFER_SIZE" envDefault:"1024"`
	SendBufferSize  int           `env:"WS_SEND_BUFFER_SIZE" envDefault:"256"`
	MaxConnections  int           `env:"WS_MAX_CONNECTIONS" envDefault:"10000"`
}

type SSEConfig struct {
	WriteWait      time.Duration `env:"SSE_WRITE_WAIT" envDefault:"10s"`
	SendBufferSize int           `env:"SSE_SEND_BUFFER_SIZE" envDefault:"256"`
}

type HeartbeatConfig struct {
	Interval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"30s"`
}

type JWTConfig struct {
	SecretKey string        `env:"JWT_SECRET_KEY"`
	Issuer    string        `env:"JWT_ISSUER"`
	Leeway    time.Duration `env:"JWT_LEEWAY" envDefault:"30s"`
}

type CookieConfig struct {
	Name string `env:"COOKIE_NAME" envDefault:"access_token"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

const minSecretKeyLen = 32

var (
	ErrMissingJWTSecret  = errors.New("config: JWT_SECRET_KEY must be at least 32 characters")
	ErrInvalidHeartbeat  = errors.New("config: HEARTBEAT_INTERVAL must be positive")
	ErrInvalidPort       = errors.New("config: PORT must be between 1 and 65535")
	ErrInvalidBufferSize = errors.New("config: send buffer sizes must be positive")
)

// IsProduction reports whether the environment is production.
func (e EnvironmentConfig) IsProduction() bool {
	return e.Name == "production" || e.Name == "prod"
}

// Enabled reports whether a record store database is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// Load reads the optional .env file (or the file named by ENV_FILE) and
// parses the environment.
func Load() (*Config, error) {
	file := os.Getenv("ENV_FILE")
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read %s: %w", file, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWT.SecretKey) < minSecretKeyLen {
		return ErrMissingJWTSecret
	}
	if c.Heartbeat.Interval <= 0 {
		return ErrInvalidHeartbeat
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.WebSocket.SendBufferSize <= 0 || c.SSE.SendBufferSize <= 0 {
		return ErrInvalidBufferSize
	}
	return nil
}
