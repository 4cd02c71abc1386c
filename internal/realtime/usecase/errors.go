package usecase

import "errors"

var ErrNoRecordStore = errors.New("record store is not configured")
