// Package publisher fronts an audit store with optional asynchronous delivery.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "lotto/pkg/platform/audit"
	"lotto/pkg/platform/audit/worker"
)

var errBufferFull = errors.New("audit buffer full")

// Lister is implemented by stores that can be queried back.
type Lister interface {
	ListBySubject(ctx context.Context, subject string) ([]audit.Event, error)
}

// Publisher stamps events and hands them to a store, either inline or through
// a buffered worker.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	buffer int
	inbox  chan audit.Event
	done   chan struct{}
	cancel context.CancelFunc

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

type Option func(*Publisher)

// WithAsyncBuffer delivers events from a background worker with a buffer of n.
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
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		w := worker.NewWorker(store, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			_ = w.Run(ctx)
		}()
	}
	return p
}

// Emit records event. In async mode a full buffer returns an error rather than
// blocking the caller.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("audit publisher closed")
	}
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errBufferFull
	}
}

// List reads events back when the store supports it.
func (p *Publisher) List(ctx context.Context, subject string) ([]audit.Event, error) {
	lister, ok := p.store.(Lister)
	if !ok {
		return nil, fmt.Errorf("audit store does not support listing")
	}
	return lister.ListBySubject(ctx, subject)
}

// Close stops accepting events and waits for buffered ones to be delivered.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.inbox == nil {
			return
		}
		p.mu.Lock()
		p.closed = true
		close(p.inbox)
		p.mu.Unlock()
		<-p.done
		p.cancel()
	})
}
