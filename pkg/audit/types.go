package audit

import (
	"context"
	"fmt"
	"time"
)

// Result represents the outcome of an audited action
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
	ResultError   Result = "error"
)

// Event represents a single audit log entry
type Event struct {
	ID        string         `json:"id" bson:"_id"`
	UserID    string         `json:"user_id,omitempty"`
	Action    string         `json:"action"`
	Result    Result         `json:"result"`
	Error     string         `json:"error,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate checks if the event has all required fields
func (e *Event) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	return nil
}

// EventOption applies configuration to an Event during creation.
type EventOption func(*Event)

// WithUserID sets the subject of the event when it is not available from context,
// e.g. on login before a session exists.
func WithUserID(id string) EventOption {
	return func(e *Event) { e.UserID = id }
}

// WithMetadata adds metadata to the event
func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

// WithResult sets the event result
func WithResult(result Result) EventOption {
	return func(e *Event) { e.Result = result }
}

// Storage persists audit events.
type Storage interface {
	Store(ctx context.Context, event Event) error
}

// BatchStorage persists several events in one round trip.
type BatchStorage interface {
	Storage
	StoreBatch(ctx context.Context, events []Event) error
}
