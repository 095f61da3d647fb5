package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"willforge/pkg/domain"
)

// Publisher seals and persists audit events. It is append-only and writes
// through a Store so tests can swap sinks easily.
//
// By default Emit writes synchronously. With WithAsync the publisher buffers
// events and a background goroutine drains them; Close flushes the buffer.
// Audit events are never dropped: a full buffer degrades to a synchronous
// write instead of discarding the event.
type Publisher struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	inbox chan Event
	wg    sync.WaitGroup
}

type PublisherOption func(*Publisher)

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithAsync buffers up to size events and persists them off the request path.
func WithAsync(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.inbox = make(chan Event, size)
		}
	}
}

func WithPublisherClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit assigns the event an ID and timestamp if missing, seals the integrity
// hash, and persists it.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID.IsNil() {
		event.ID = domain.NewAuditEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}
	event.Seal()

	if p.inbox != nil {
		select {
		case p.inbox <- event:
			return nil
		default:
		}
	}
	return p.store.Append(ctx, event)
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("audit append failed",
				"action", event.Action,
				"event_id", event.ID.String(),
				"error", err)
		}
	}
}

// Close flushes buffered events and stops the background writer. The
// publisher must not be used after Close.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	close(p.inbox)
	p.wg.Wait()
}
