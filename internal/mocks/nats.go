package mocks

import (
	"sync"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/pubsub"
)

// MockNATSPubSub is an in-memory event bus that remembers recent events, standing in for JetStream replay
type MockNATSPubSub struct {
	*pubsub.PubSub
	mu      sync.RWMutex
	history []pubsub.Event
	max     int
}

// NewMockNATSPubSub creates a mock NATS pub/sub using the in-memory implementation
func NewMockNATSPubSub() *MockNATSPubSub {
	logger.Info("Using MOCK NATS/JetStream (in-memory pub/sub) for local development")
	return &MockNATSPubSub{PubSub: pubsub.New(), max: 100}
}

func (m *MockNATSPubSub) Publish(event pubsub.Event) {
	if event.ID == "" {
		event = pubsub.NewEvent(event.Type, event.Payload)
	}
	m.mu.Lock()
	m.history = append(m.history, event)
	if len(m.history) > m.max {
		m.history = m.history[len(m.history)-m.max:]
	}
	m.mu.Unlock()

	m.PubSub.Publish(event)
}

// History returns up to n of the most recent events, oldest first
func (m *MockNATSPubSub) History(n int) []pubsub.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := len(m.history) - n
	if start < 0 {
		start = 0
	}
	out := make([]pubsub.Event, len(m.history[start:]))
	copy(out, m.history[start:])
	return out
}
