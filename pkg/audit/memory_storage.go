package audit

import (
	"context"
	"slices"
	"sync"
)

// MemoryStorage keeps events in memory. Used in development and tests.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Store(ctx context.Context, event Event) error {
	return s.StoreBatch(ctx, []Event{event})
}

func (s *MemoryStorage) StoreBatch(ctx context.Context, events []Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.events = append(s.events, events...)
	s.mu.Unlock()
	return nil
}

// Events returns a copy of the stored events, optionally filtered by action.
func (s *MemoryStorage) Events(actions ...string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		if len(actions) == 0 || slices.Contains(actions, e.Action) {
			out = append(out, e)
		}
	}
	return out
}
