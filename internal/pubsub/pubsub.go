package pubsub

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
)

// Board event types
const (
	EventRankingsLoad = "rankings:load"
	EventCatalogLoad  = "catalog:load"
	EventDraftSet     = "draft:set"
	EventDraftRefresh = "draft:refresh"
)

// Event is a board change notification
type Event struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"`
	Time    time.Time              `json:"time"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with an id and the current time
func NewEvent(eventType string, payload map[string]interface{}) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		Time:    time.Now().UTC(),
		Payload: payload,
	}
}

// Bus is implemented by every event transport
type Bus interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
}

// PubSub fans events out to in-process subscribers, optionally through an upstream bus
type PubSub struct {
	mu          sync.RWMutex
	subscribers []chan Event
	upstream    Bus
	bufferSize  int
}

// New creates an in-process PubSub
func New() *PubSub {
	return &PubSub{bufferSize: 16}
}

// NewWithUpstream creates a PubSub that publishes to upstream and relays whatever
// upstream delivers back to local subscribers, so every instance sees every event.
func NewWithUpstream(upstream Bus) *PubSub {
	ps := &PubSub{upstream: upstream, bufferSize: 16}

	ch := upstream.Subscribe()
	go func() {
		for event := range ch {
			ps.publishLocal(event)
		}
		logger.Debug("PubSub: upstream channel closed")
	}()

	return ps
}

// Subscribe adds a subscriber; slow subscribers drop events rather than block publishers
func (ps *PubSub) Subscribe() chan Event {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan Event, ps.bufferSize)
	ps.subscribers = append(ps.subscribers, ch)
	logger.Debug("PubSub: subscriber added", "total", len(ps.subscribers))
	return ch
}

// Unsubscribe removes and closes a subscriber channel
func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for i, sub := range ps.subscribers {
		if sub == ch {
			close(ch)
			ps.subscribers = append(ps.subscribers[:i], ps.subscribers[i+1:]...)
			return
		}
	}
}

func (ps *PubSub) Publish(event Event) {
	if event.ID == "" {
		event = NewEvent(event.Type, event.Payload)
	}
	if ps.upstream != nil {
		ps.upstream.Publish(event)
		return
	}
	ps.publishLocal(event)
}

// SubscriberCount returns the number of local subscribers
func (ps *PubSub) SubscriberCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers)
}

// Close closes every subscriber channel
func (ps *PubSub) Close() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, sub := range ps.subscribers {
		close(sub)
	}
	ps.subscribers = nil
}

func (ps *PubSub) publishLocal(event Event) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, ch := range ps.subscribers {
		select {
		case ch <- event:
		default:
			logger.Warn("PubSub: dropping event for slow subscriber", "type", event.Type)
		}
	}
}
