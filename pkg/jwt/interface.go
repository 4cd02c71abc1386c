package jwt

// Verifier validates a bearer credential and yields its subject.
// Implementations hold no per-connection state and perform no I/O.
type Verifier interface {
	Verify(token string) (string, error)
}

// NewVerifier returns an HMAC verifier. The secret must be at least
// MinSecretKeyLen characters long.
func NewVerifier(cfg Config) (Verifier, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return newVerifier(cfg), nil
}
