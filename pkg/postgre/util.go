package postgre

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInvalidUUID = errors.New("invalid UUID format")

// IsUUID returns an error wrapping ErrInvalidUUID when u is not a UUID.
func IsUUID(u string) error {
	if u == "" {
		return fmt.Errorf("%w: UUID cannot be empty", ErrInvalidUUID)
	}
	if _, err := uuid.Parse(u); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUUID, err)
	}
	return nil
}

// DSN builds a lib/pq connection string. An empty sslMode means disable.
func DSN(host string, port int, user, password, dbName, sslMode string) string {
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslMode)
}
