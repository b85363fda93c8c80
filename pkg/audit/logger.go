package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContextExtractor pulls a string value out of a request context.
type ContextExtractor func(context.Context) (string, bool)

// Logger builds events from context and hands them to a Storage.
type Logger struct {
	storage            Storage
	now                func() time.Time
	userIDExtractor    ContextExtractor
	requestIDExtractor ContextExtractor
	ipExtractor        ContextExtractor
	userAgentExtractor ContextExtractor
}

// Option configures Logger behavior during initialization
type Option func(*Logger)

func WithUserIDExtractor(fn ContextExtractor) Option {
	return func(l *Logger) { l.userIDExtractor = fn }
}

func WithRequestIDExtractor(fn ContextExtractor) Option {
	return func(l *Logger) { l.requestIDExtractor = fn }
}

func WithIPExtractor(fn ContextExtractor) Option {
	return func(l *Logger) { l.ipExtractor = fn }
}

func WithUserAgentExtractor(fn ContextExtractor) Option {
	return func(l *Logger) { l.userAgentExtractor = fn }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLogger creates a new audit logger
func NewLogger(storage Storage, opts ...Option) (*Logger, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}
	l := &Logger{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Log records a successful action
func (l *Logger) Log(ctx context.Context, action string, opts ...EventOption) error {
	return l.store(ctx, action, ResultSuccess, nil, opts)
}

// LogFailure records an action refused for a domain reason, e.g. a wrong password.
func (l *Logger) LogFailure(ctx context.Context, action string, reason error, opts ...EventOption) error {
	return l.store(ctx, action, ResultFailure, reason, opts)
}

// LogError records an action that failed on an internal error.
func (l *Logger) LogError(ctx context.Context, action string, err error, opts ...EventOption) error {
	return l.store(ctx, action, ResultError, err, opts)
}

func (l *Logger) store(ctx context.Context, action string, result Result, err error, opts []EventOption) error {
	event := l.eventFromContext(ctx)
	event.ID = uuid.NewString()
	event.CreatedAt = l.now().UTC()
	event.Action = action
	event.Result = result
	if err != nil {
		event.Error = err.Error()
	}

	for _, opt := range opts {
		opt(&event)
	}

	if err := event.Validate(); err != nil {
		return err
	}
	return l.storage.Store(ctx, event)
}

func (l *Logger) eventFromContext(ctx context.Context) Event {
	var event Event
	extract := func(fn ContextExtractor, dst *string) {
		if fn == nil {
			return
		}
		if v, ok := fn(ctx); ok {
			*dst = v
		}
	}
	extract(l.userIDExtractor, &event.UserID)
	extract(l.requestIDExtractor, &event.RequestID)
	extract(l.ipExtractor, &event.IP)
	extract(l.userAgentExtractor, &event.UserAgent)
	return event
}
