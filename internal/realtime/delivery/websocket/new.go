package websocket

import (
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/log"
)

// Config tunes the WebSocket transport.
type Config struct {
	WriteWait       time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	CookieName      string
	Origins         OriginPolicy
}

type Handler struct {
	uc       realtime.UseCase
	logger   log.Logger
	cfg      Config
	upgrader ws.Upgrader
}

func New(l log.Logger, uc realtime.UseCase, cfg Config) *Handler {
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 64 * 1024
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = 256
	}

	return &Handler{
		uc:     uc,
		logger: l,
		cfg:    cfg,
		upgrader: ws.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.Origins.Check,
		},
	}
}
