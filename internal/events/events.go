package events

import (
    "sync"
    "time"
)

// Event types published by the planner.
const (
    TypeRefreshed   = "planner.refreshed"
    TypeCommitted   = "planner.committed"
    TypeConflict    = "planner.group_conflict"
    TypeWriteFailed = "planner.write_failed"
)

// Event represents a lightweight planning notification for the UI layer.
type Event struct {
    Type      string
    Payload   any
    CreatedAt time.Time
}

// Handler reacts to an event.
type Handler func(event Event)

// Bus provides in-process pub/sub for planning events.
type Bus struct {
    subscribers map[string][]Handler
    mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
    return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
    b.mu.Lock()
    defer b.mu.Unlock()
    b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *Bus) Publish(eventType string, payload any) {
    b.mu.RLock()
    handlers := append([]Handler(nil), b.subscribers[eventType]...)
    b.mu.RUnlock()

    event := Event{Type: eventType, Payload: payload, CreatedAt: time.Now()}
    for _, handler := range handlers {
        // Handlers run synchronously; caller decides concurrency model.
        handler(event)
    }
}
