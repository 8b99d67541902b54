package event

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/erp/product-dimension/internal/domain/shared"
)

// allEvents is the subscription key of handlers that receive every event,
// such as the AMQP forwarder.
const allEvents = "*"

// subscriptions maps catalog event types to their handlers. A handler is held
// at most once per event type, so a handler subscribed twice (the mirror sync
// handler wired by two components, say) still sees each event once.
type subscriptions struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
}

func newSubscriptions() *subscriptions {
	return &subscriptions{handlers: make(map[string][]shared.EventHandler)}
}

// add subscribes handler to eventTypes; none means every event
func (s *subscriptions) add(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{allEvents}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, eventType := range eventTypes {
		if slices.Contains(s.handlers[eventType], handler) {
			continue
		}
		s.handlers[eventType] = append(s.handlers[eventType], handler)
	}
}

// remove drops handler from every event type
func (s *subscriptions) remove(handler shared.EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for eventType, handlers := range s.handlers {
		handlers = slices.DeleteFunc(handlers, func(h shared.EventHandler) bool { return h == handler })
		if len(handlers) == 0 {
			delete(s.handlers, eventType)
			continue
		}
		s.handlers[eventType] = handlers
	}
}

// forEvent returns the handlers of eventType in subscription order, followed
// by the handlers subscribed to every event. The result is a copy.
func (s *subscriptions) forEvent(eventType string) []shared.EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()

	typed := s.handlers[eventType]
	out := make([]shared.EventHandler, 0, len(typed)+len(s.handlers[allEvents]))
	out = append(out, typed...)
	for _, h := range s.handlers[allEvents] {
		if !slices.Contains(typed, h) {
			out = append(out, h)
		}
	}
	return out
}

// describe lists "<event type>=<handler type>" pairs sorted by event type,
// for the startup log line.
func (s *subscriptions) describe() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.handlers))
	for eventType, handlers := range s.handlers {
		for _, h := range handlers {
			out = append(out, fmt.Sprintf("%s=%T", eventType, h))
		}
	}
	sort.Strings(out)
	return out
}
