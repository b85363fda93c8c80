package opensearch

import (
	"context"
	"errors"

	"github.com/opensearch-project/opensearch-go/v2"
)

// New creates a client and verifies the cluster answers.
func New(ctx context.Context, cfg Config) (*opensearch.Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNoAddresses
	}
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:  cfg.Addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	if err := Healthcheck(client)(ctx); err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}
	return client, nil
}
