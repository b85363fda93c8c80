package opensearch

import "errors"

var (
	ErrNoAddresses       = errors.New("opensearch addresses are not configured")
	ErrConnectionFailed  = errors.New("opensearch connection failed")
	ErrHealthcheckFailed = errors.New("opensearch healthcheck failed")
)
