package audit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fintrack/pkg/audit"
)

type ctxKey string

func fromCtx(key ctxKey) audit.ContextExtractor {
	return func(ctx context.Context) (string, bool) {
		v, ok := ctx.Value(key).(string)
		return v, ok
	}
}

func TestNewLogger_NilStorage(t *testing.T) {
	t.Parallel()
	_, err := audit.NewLogger(nil)
	assert.ErrorIs(t, err, audit.ErrNilStorage)
}

func TestLogger_Log(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	storage := audit.NewMemoryStorage()
	log, err := audit.NewLogger(storage,
		audit.WithClock(func() time.Time { return now }),
		audit.WithUserIDExtractor(fromCtx("user")),
		audit.WithRequestIDExtractor(fromCtx("req")),
		audit.WithIPExtractor(fromCtx("ip")),
	)
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), ctxKey("user"), "u-1")
	ctx = context.WithValue(ctx, ctxKey("req"), "r-1")

	require.NoError(t, log.Log(ctx, "auth.password_changed", audit.WithMetadata("method", "password")))
	require.NoError(t, log.LogFailure(ctx, "auth.login", errors.New("invalid credentials"), audit.WithUserID("u-2")))
	require.NoError(t, log.LogError(ctx, "auth.2fa_enable", errors.New("db down")))

	events := storage.Events()
	require.Len(t, events, 3)

	assert.Equal(t, audit.ResultSuccess, events[0].Result)
	assert.Equal(t, "u-1", events[0].UserID)
	assert.Equal(t, "r-1", events[0].RequestID)
	assert.Empty(t, events[0].IP)
	assert.Equal(t, "password", events[0].Metadata["method"])
	assert.Equal(t, now, events[0].CreatedAt)
	assert.NotEmpty(t, events[0].ID)

	assert.Equal(t, audit.ResultFailure, events[1].Result)
	assert.Equal(t, "u-2", events[1].UserID)
	assert.Equal(t, "invalid credentials", events[1].Error)

	assert.Equal(t, audit.ResultError, events[2].Result)
	assert.Len(t, storage.Events("auth.login"), 1)
}

func TestLogger_RequiresAction(t *testing.T) {
	t.Parallel()
	log, err := audit.NewLogger(audit.NewMemoryStorage())
	require.NoError(t, err)
	assert.ErrorIs(t, log.Log(context.Background(), ""), audit.ErrEventValidation)
}

type countingStorage struct {
	mu      sync.Mutex
	batches [][]audit.Event
	err     error
}

func (s *countingStorage) Store(ctx context.Context, e audit.Event) error {
	return s.StoreBatch(ctx, []audit.Event{e})
}

func (s *countingStorage) StoreBatch(_ context.Context, events []audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, append([]audit.Event(nil), events...))
	return s.err
}

func (s *countingStorage) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func TestAsyncWriter(t *testing.T) {
	t.Parallel()

	t.Run("batches concurrent events", func(t *testing.T) {
		t.Parallel()
		storage := &countingStorage{}
		w, err := audit.NewAsyncWriter(storage, audit.AsyncOptions{BatchSize: 5, BatchTimeout: 20 * time.Millisecond})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, w.Store(context.Background(), audit.Event{ID: string(rune('a' + i)), Action: "x"}))
			}()
		}
		wg.Wait()
		require.NoError(t, w.Close(context.Background()))
		assert.Equal(t, 10, storage.total())
	})

	t.Run("propagates storage errors", func(t *testing.T) {
		t.Parallel()
		storage := &countingStorage{err: errors.New("boom")}
		w, err := audit.NewAsyncWriter(storage, audit.AsyncOptions{BatchTimeout: 10 * time.Millisecond})
		require.NoError(t, err)
		assert.Error(t, w.Store(context.Background(), audit.Event{Action: "x"}))
		require.NoError(t, w.Close(context.Background()))
	})

	t.Run("rejects after close", func(t *testing.T) {
		t.Parallel()
		w, err := audit.NewAsyncWriter(&countingStorage{}, audit.AsyncOptions{})
		require.NoError(t, err)
		require.NoError(t, w.Close(context.Background()))
		require.NoError(t, w.Close(context.Background()))
		assert.ErrorIs(t, w.Store(context.Background(), audit.Event{Action: "x"}), audit.ErrStorageNotAvailable)
	})
}

func TestMultiStorage(t *testing.T) {
	t.Parallel()
	ok := audit.NewMemoryStorage()
	failing := &countingStorage{err: errors.New("boom")}
	multi := audit.MultiStorage{failing, ok}

	err := multi.Store(context.Background(), audit.Event{Action: "x"})
	assert.Error(t, err)
	assert.Len(t, ok.Events(), 1)
	assert.Equal(t, 1, failing.total())
}
