package storage

import "errors"

var (
	ErrEmptyKey                = errors.New("storage: key is empty")
	ErrReadFailed              = errors.New("storage: failed to read")
	ErrWriteFailed             = errors.New("storage: failed to write")
	ErrFailedToParseConnString = errors.New("storage: failed to parse redis connection string")
	ErrRedisNotReady           = errors.New("storage: redis did not become ready within the given time period")
)
