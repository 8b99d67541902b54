package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/erp/product-dimension/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DispatchObserver is told about every handler invocation
type DispatchObserver func(eventType string, err error)

// InMemoryEventBus implements EventBus with synchronous in-process pub/sub.
// Handlers run after the publishing transaction committed, so a failing
// handler never undoes a write.
type InMemoryEventBus struct {
	subs    *subscriptions
	logger  *zap.Logger
	observe DispatchObserver
	running atomic.Bool
}

// BusOption configures the bus
type BusOption func(*InMemoryEventBus)

// WithDispatchObserver registers an observer for handler outcomes
func WithDispatchObserver(o DispatchObserver) BusOption {
	return func(b *InMemoryEventBus) {
		b.observe = o
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(log *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	if log == nil {
		log = zap.NewNop()
	}
	b := &InMemoryEventBus{
		subs:   newSubscriptions(),
		logger: log.Named("event_bus"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish dispatches events to their handlers in order. Handler failures are
// logged and do not stop delivery to the remaining handlers.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	log := logger.WithLogger(ctx, b.logger)
	for _, event := range events {
		for _, handler := range b.subs.forEvent(event.EventType()) {
			err := b.dispatchToHandler(ctx, handler, event)
			if b.observe != nil {
				b.observe(event.EventType(), err)
			}
			if err != nil {
				log.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.String("aggregate_id", event.AggregateID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.subs.add(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.subs.remove(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start marks the bus as running
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started", zap.Strings("subscriptions", b.subs.describe()))
	return nil
}

// Stop marks the bus as stopped. Publish is synchronous so nothing is in flight.
func (b *InMemoryEventBus) Stop(_ context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped")
	return nil
}

// Running reports whether Start was called without a later Stop
func (b *InMemoryEventBus) Running() bool {
	return b.running.Load()
}

// dispatchToHandler turns a handler panic into an error
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
