package audit

import "errors"

var (
	ErrStorageNotAvailable = errors.New("audit: storage backend is unavailable")
	ErrEventValidation     = errors.New("audit: event validation failed")
	ErrNilStorage          = errors.New("audit: storage cannot be nil")
)
