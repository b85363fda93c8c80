package audit

import (
	"context"
	"errors"
)

// MultiStorage fans every event out to several storages, e.g. Postgres for
// retention and OpenSearch for search. All storages are attempted.
type MultiStorage []BatchStorage

func (m MultiStorage) Store(ctx context.Context, event Event) error {
	return m.StoreBatch(ctx, []Event{event})
}

func (m MultiStorage) StoreBatch(ctx context.Context, events []Event) error {
	var errs []error
	for _, s := range m {
		if err := s.StoreBatch(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
