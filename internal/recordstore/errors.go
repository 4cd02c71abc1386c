package recordstore

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnknownEntity = errors.New("unknown entity type")
)
