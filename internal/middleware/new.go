package middleware

import "github.com/Jim-devENG/ispora-engine-sub009/pkg/log"

type Middleware struct {
	logger log.Logger
}

func New(logger log.Logger) Middleware {
	return Middleware{logger: logger}
}
