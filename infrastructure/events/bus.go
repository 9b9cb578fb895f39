// Package events provides the in-process event bus that keeps every
// connected view synchronized with repository mutations.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"semcanvas/application/ports"
	domainevents "semcanvas/domain/events"
)

// TypeAll subscribes a handler to every event type
const TypeAll = "*"

// Bus is a synchronous in-memory event bus. Handler errors are logged
// and never interrupt delivery to the remaining handlers; the publisher
// has already committed its mutation.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]ports.EventHandler
	logger   *zap.Logger
}

// NewBus creates an empty bus
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[string][]ports.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type, or for every type
// via TypeAll
func (b *Bus) Subscribe(eventType string, handler ports.EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// Unsubscribe removes a previously registered handler
func (b *Bus) Unsubscribe(eventType string, handler ports.EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	registered := b.handlers[eventType]
	for i, h := range registered {
		if h == handler {
			b.handlers[eventType] = append(registered[:i:i], registered[i+1:]...)
			return nil
		}
	}
	return nil
}

// Publish delivers one event to every matching handler
func (b *Bus) Publish(ctx context.Context, event domainevents.DomainEvent) error {
	b.mu.RLock()
	matching := make([]ports.EventHandler, 0, len(b.handlers[event.GetEventType()])+len(b.handlers[TypeAll]))
	matching = append(matching, b.handlers[event.GetEventType()]...)
	matching = append(matching, b.handlers[TypeAll]...)
	b.mu.RUnlock()

	for _, h := range matching {
		if !h.CanHandle(event.GetEventType()) {
			continue
		}
		if err := h.Handle(ctx, event); err != nil {
			b.logger.Error("event handler failed",
				zap.String("event_type", event.GetEventType()),
				zap.String("aggregate_id", event.GetAggregateID()),
				zap.Error(err))
		}
	}
	return nil
}

// PublishBatch delivers events in order
func (b *Bus) PublishBatch(ctx context.Context, batch []domainevents.DomainEvent) error {
	for _, e := range batch {
		if err := b.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// ViewHandler adapts a function to ports.EventHandler for a view.
// Events tagged with the view's own source are skipped so a view never
// reacts to its own just-issued mutation twice.
type ViewHandler struct {
	// OwnSource is the tag this view stamps on its mutations; empty
	// disables the filter.
	OwnSource string
	Fn        func(ctx context.Context, event domainevents.DomainEvent) error
}

// Handle implements ports.EventHandler
func (h *ViewHandler) Handle(ctx context.Context, event domainevents.DomainEvent) error {
	if h.OwnSource != "" && event.GetSource() == h.OwnSource {
		return nil
	}
	return h.Fn(ctx, event)
}

// CanHandle implements ports.EventHandler
func (h *ViewHandler) CanHandle(string) bool { return true }
