package sse

import (
	"time"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/log"
)

type Config struct {
	WriteWait      time.Duration
	SendBufferSize int
	CookieName     string
}

type Handler struct {
	uc     realtime.UseCase
	logger log.Logger
	cfg    Config
}

func New(l log.Logger, uc realtime.UseCase, cfg Config) *Handler {
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = 256
	}
	return &Handler{uc: uc, logger: l, cfg: cfg}
}
