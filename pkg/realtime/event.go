// Package realtime pushes per-profile events to connected portals over
// websockets, fanned out across instances through a Bus.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
)

type Event struct {
	ProfileID int64           `json:"profile_id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals data into an event for one profile.
func NewEvent(profileID int64, eventType string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{ProfileID: profileID, Type: eventType, Data: raw}, nil
}

type Handler func(Event)

// Bus carries events between API instances.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe blocks, calling h for every event, until ctx is done.
	Subscribe(ctx context.Context, h Handler) error
}

// LocalBus delivers events in-process. Used in single-instance mode and tests.
type LocalBus struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler
}

func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: make(map[int]Handler)}
}

func (b *LocalBus) Publish(_ context.Context, ev Event) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context, h Handler) error {
	b.mu.Lock()
	b.next++
	token := b.next
	b.handlers[token] = h
	b.mu.Unlock()

	<-ctx.Done()

	b.mu.Lock()
	delete(b.handlers, token)
	b.mu.Unlock()
	return nil
}

// Subscribers reports how many handlers are currently attached.
func (b *LocalBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
