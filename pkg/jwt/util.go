package jwt

import (
	"fmt"
	"net/http"
	"strings"
)

func validateConfig(cfg Config) error {
	if len(cfg.SecretKey) < MinSecretKeyLen {
		return fmt.Errorf("%w: must be at least %d characters long, got %d", ErrWeakSecret, MinSecretKeyLen, len(cfg.SecretKey))
	}
	return nil
}

// FromRequest extracts a bearer credential. The token query parameter wins,
// then the Authorization header, then the named cookie.
func FromRequest(r *http.Request, cookieName string) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}

	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}
