package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Jim-devENG/ispora-engine-sub009/config"
	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
	redisDelivery "github.com/Jim-devENG/ispora-engine-sub009/internal/realtime/delivery/redis"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/jwt"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/log"
	pkgRedis "github.com/Jim-devENG/ispora-engine-sub009/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

type ingress interface {
	Start() error
	GetHealthInfo() redisDelivery.HealthInfo
	Shutdown(ctx context.Context) error
}

// HTTPServer owns the gin engine and the realtime use case behind it.
// New only wires and validates; Run starts serving.
type HTTPServer struct {
	gin    *gin.Engine
	logger log.Logger
	cfg    *config.Config

	verifier jwt.Verifier
	redis    pinger
	client   *pkgRedis.Client
	db       *sql.DB

	uc         realtime.UseCase
	subscriber ingress

	shuttingDown atomic.Bool
}

type Config struct {
	App      *config.Config
	Verifier jwt.Verifier
	Redis    *pkgRedis.Client
	// Postgres is optional; without it accounts and entities are not checked.
	Postgres *sql.DB
}

func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	srv := &HTTPServer{
		logger:   logger,
		cfg:      cfg.App,
		verifier: cfg.Verifier,
		client:   cfg.Redis,
		db:       cfg.Postgres,
	}
	if cfg.Redis != nil {
		srv.redis = cfg.Redis
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}

	gin.SetMode(srv.cfg.Server.Mode)
	srv.gin = gin.New()
	return srv, nil
}

func (srv *HTTPServer) validate() error {
	if srv.logger == nil {
		return errors.New("logger is required")
	}
	if srv.cfg == nil {
		return errors.New("config is required")
	}
	if srv.cfg.Server.Port == 0 {
		return errors.New("port is required")
	}
	if srv.verifier == nil {
		return errors.New("verifier is required")
	}
	if srv.client == nil {
		return errors.New("redis client is required")
	}
	return nil
}
