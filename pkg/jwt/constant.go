package jwt

import (
	"errors"
	"time"
)

const (
	MinSecretKeyLen = 32

	DefaultTTL = 24 * time.Hour

	// DefaultCookieName is the cookie read by FromRequest when none is configured.
	DefaultCookieName = "access_token"
)

var (
	ErrMissingToken = errors.New("jwt: missing token")
	ErrInvalidToken = errors.New("jwt: invalid token")
	ErrWeakSecret   = errors.New("jwt: secret key too short")
)
