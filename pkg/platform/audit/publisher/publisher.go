// Package publisher is the entry point services use to emit audit events.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	id "municipal/pkg/domain"
	audit "municipal/pkg/platform/audit"
	"municipal/pkg/platform/audit/worker"
	"municipal/pkg/requestcontext"
)

var (
	// ErrBufferFull is returned in async mode when the event could not be queued.
	ErrBufferFull = errors.New("audit buffer full")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("audit publisher closed")
)

// Publisher writes events to a Store, either synchronously or through a
// bounded buffer drained by a background worker.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
	buffer int

	mu     sync.RWMutex
	closed bool
	inbox  chan audit.Event
	done   chan struct{}
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with a buffer of n events.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.buffer = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer > 0 {
		p.inbox = make(chan audit.Event, p.buffer)
		p.done = make(chan struct{})
		w := worker.NewWorker(store, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			_ = w.Run(context.Background())
		}()
	}
	return p
}

// Emit records event. Missing timestamp, category and request id are filled
// from the action and the request context.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.inbox <- event:
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.logger != nil {
		p.logger.WarnContext(ctx, "audit buffer full, event dropped", "action", event.Action)
	}
	return ErrBufferFull
}

// List returns the stored events for a citizen.
func (p *Publisher) List(ctx context.Context, citizenID id.CitizenID) ([]audit.Event, error) {
	return p.store.ListByCitizen(ctx, citizenID)
}

// Close stops accepting events and, in async mode, waits until the buffer is drained.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.inbox != nil {
		close(p.inbox)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
}
