package audit

import (
	"context"
	"sync"
	"time"
)

// AsyncOptions configures batching of events on their way to storage.
type AsyncOptions struct {
	BufferSize     int
	BatchSize      int
	BatchTimeout   time.Duration
	StorageTimeout time.Duration
}

// AsyncWriter collects events into batches written by a background goroutine.
// Store returns once the batch holding the event has been written.
type AsyncWriter struct {
	storage   BatchStorage
	eventChan chan pendingEvent
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	options   AsyncOptions
}

type pendingEvent struct {
	event  Event
	result chan error
}

// NewAsyncWriter starts the batching worker. Call Close on shutdown.
func NewAsyncWriter(storage BatchStorage, opts AsyncOptions) (*AsyncWriter, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = 100 * time.Millisecond
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 5 * time.Second
	}

	aw := &AsyncWriter{
		storage:   storage,
		eventChan: make(chan pendingEvent, opts.BufferSize),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		options:   opts,
	}
	go aw.worker()
	return aw, nil
}

// Store queues the event. When the buffer is full the event is written synchronously.
func (aw *AsyncWriter) Store(ctx context.Context, event Event) error {
	select {
	case <-aw.done:
		return ErrStorageNotAvailable
	default:
	}

	result := make(chan error, 1)
	select {
	case aw.eventChan <- pendingEvent{event: event, result: result}:
	case <-ctx.Done():
		return ctx.Err()
	default:
		return aw.storage.StoreBatch(ctx, []Event{event})
	}

	select {
	case err := <-result:
		return err
	case <-aw.stopped:
		select {
		case err := <-result:
			return err
		default:
			return ErrStorageNotAvailable
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (aw *AsyncWriter) worker() {
	defer close(aw.stopped)

	batch := make([]Event, 0, aw.options.BatchSize)
	results := make([]chan error, 0, aw.options.BatchSize)
	ticker := time.NewTicker(aw.options.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Detached from callers so one cancelled request does not drop the batch.
		ctx, cancel := context.WithTimeout(context.Background(), aw.options.StorageTimeout)
		err := aw.storage.StoreBatch(ctx, batch)
		cancel()
		for _, ch := range results {
			ch <- err
		}
		clear(batch)
		batch = batch[:0]
		results = results[:0]
	}

	for {
		select {
		case p := <-aw.eventChan:
			batch = append(batch, p.event)
			results = append(results, p.result)
			if len(batch) >= aw.options.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-aw.done:
			for {
				select {
				case p := <-aw.eventChan:
					batch = append(batch, p.event)
					results = append(results, p.result)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close stops the worker after flushing queued events.
func (aw *AsyncWriter) Close(ctx context.Context) error {
	aw.closeOnce.Do(func() { close(aw.done) })

	select {
	case <-aw.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
