package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds the verifier configuration.
type Config struct {
	SecretKey string
	// Issuer is enforced only when non-empty.
	Issuer string
	Leeway time.Duration
}

// Claims is the token body accepted by the service.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// GenerateInput describes a token to mint.
type GenerateInput struct {
	Subject string
	Email   string
	TTL     time.Duration
}

type verifier struct {
	secretKey []byte
	parser    *jwt.Parser
}
