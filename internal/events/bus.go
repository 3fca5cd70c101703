package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler receives events from the bus. Returned errors are logged.
type Handler func(ctx context.Context, e Event) error

const (
	defaultQueueSize      = 256
	defaultHandlerTimeout = 10 * time.Second
)

type subscriber struct {
	name string
	fn   Handler
}

// Bus is a bounded asynchronous fan-out. Publish never blocks: when the
// queue is full the event is dropped with a warning. Subscribers run on a
// single worker started by Start and stopped by Close.
type Bus struct {
	log            *zap.Logger
	queue          chan Event
	handlerTimeout time.Duration

	mu          sync.RWMutex
	subscribers []subscriber
	closed      bool

	startOnce sync.Once
	done      chan struct{}
}

// Option configures a Bus.
type Option func(*Bus)

// WithQueueSize sets how many events may wait for delivery.
func WithQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queue = make(chan Event, n)
		}
	}
}

// WithHandlerTimeout bounds each subscriber call.
func WithHandlerTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.handlerTimeout = d
		}
	}
}

// NewBus creates a bus. It delivers nothing until Start is called.
func NewBus(log *zap.Logger, opts ...Option) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bus{
		log:            log,
		queue:          make(chan Event, defaultQueueSize),
		handlerTimeout: defaultHandlerTimeout,
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler. Subscribe after Start is allowed; the
// handler sees events dequeued from then on.
func (b *Bus) Subscribe(name string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, subscriber{name: name, fn: fn})
}

// Publish enqueues e for delivery.
func (b *Bus) Publish(_ context.Context, e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.log.Warn("event dropped, bus closed", zap.String("type", string(e.Type)))
		return
	}

	select {
	case b.queue <- e:
	default:
		b.log.Warn("event dropped, queue full",
			zap.String("type", string(e.Type)),
			zap.Int64("suggestion_id", e.SuggestionID),
		)
	}
}

// Start launches the delivery worker in its own goroutine. Handlers get
// contexts derived from ctx with its cancellation removed, so queued
// events still drain after ctx ends; Close is what stops the worker.
func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() { go b.work(ctx) })
}

// Run starts the worker if needed and waits until Close has been called
// and the queue is drained. Ending ctx abandons the wait: Run returns an
// error and whatever is still queued may never be delivered.
func (b *Bus) Run(ctx context.Context) error {
	b.Start(ctx)
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus abandoned: %w", ctx.Err())
	}
}

func (b *Bus) work(ctx context.Context) {
	defer close(b.done)
	base := context.WithoutCancel(ctx)
	for e := range b.queue {
		b.deliver(base, e)
	}
}

// Close stops accepting events, waits for queued ones to be delivered and
// returns when the worker has exited or ctx ends.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	// Without a worker nobody drains the queue.
	b.Start(ctx)

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("closing event bus: %w", ctx.Err())
	}
}

func (b *Bus) deliver(ctx context.Context, e Event) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, s := range subs {
		b.call(ctx, s, e)
	}
}

func (b *Bus) call(ctx context.Context, s subscriber, e Event) {
	ctx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				zap.String("subscriber", s.name),
				zap.String("type", string(e.Type)),
				zap.Any("panic", r),
			)
		}
	}()

	if err := s.fn(ctx, e); err != nil {
		b.log.Warn("event handler failed",
			zap.String("subscriber", s.name),
			zap.String("type", string(e.Type)),
			zap.String("event_id", e.ID.String()),
			zap.Error(err),
		)
	}
}
