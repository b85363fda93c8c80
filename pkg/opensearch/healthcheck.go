package opensearch

import (
	"context"
	"errors"
	"fmt"

	"github.com/opensearch-project/opensearch-go/v2"
)

// Healthcheck returns a readiness probe that calls the cluster info endpoint.
func Healthcheck(client *opensearch.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		resp, err := client.Info(client.Info.WithContext(ctx))
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		defer resp.Body.Close()
		if resp.IsError() {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("status %s", resp.Status()))
		}
		return nil
	}
}
