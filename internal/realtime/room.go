package realtime

import "fmt"

// MaxRoomIDLength bounds the bytes kept per room key.
const MaxRoomIDLength = 256

// ValidateRoomID accepts any non-empty id up to MaxRoomIDLength bytes. Room
// ids are caller defined and otherwise opaque.
func ValidateRoomID(room string) error {
	if room == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidRoomID)
	}
	if len(room) > MaxRoomIDLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidRoomID, MaxRoomIDLength)
	}
	return nil
}
