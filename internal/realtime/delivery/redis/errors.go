package redis

import "errors"

var (
	ErrInvalidChannel   = errors.New("invalid channel")
	ErrMissingEvent     = errors.New("missing event name")
	ErrUnpublishable    = errors.New("event scope cannot be published")
	ErrSubscriberClosed = errors.New("subscriber is shut down")
)
