package mocks

import (
	"context"
	"sync"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/clickhouse"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

// MockADPStore keeps recorded picks in memory for local development
type MockADPStore struct {
	mu    sync.RWMutex
	picks map[string]map[string]int // draftID -> playerID -> pick number
}

// NewMockADPStore creates an empty in-memory ADP store
func NewMockADPStore() *MockADPStore {
	logger.Info("Using MOCK ClickHouse ADP store for local development")
	return &MockADPStore{picks: make(map[string]map[string]int)}
}

// RecordPicks stores picks, replacing earlier records of the same draft and player
func (m *MockADPStore) RecordPicks(ctx context.Context, draftID string, picks []models.PickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	draft, ok := m.picks[draftID]
	if !ok {
		draft = make(map[string]int)
		m.picks[draftID] = draft
	}
	for _, p := range picks {
		draft[p.RemotePlayerID] = p.PickNumber
	}
	return nil
}

// AverageDraftPositions averages pick numbers across every recorded draft
func (m *MockADPStore) AverageDraftPositions(ctx context.Context) ([]models.ADPEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, draft := range m.picks {
		for id, pick := range draft {
			sums[id] += pick
			counts[id]++
		}
	}

	entries := make([]models.ADPEntry, 0, len(sums))
	for id, sum := range sums {
		entries = append(entries, models.ADPEntry{
			RemotePlayerID: id,
			AveragePick:    float64(sum) / float64(counts[id]),
			Drafts:         counts[id],
		})
	}
	clickhouse.SortADP(entries)
	return entries, nil
}

// Close is a no-op for mock client
func (m *MockADPStore) Close() error {
	return nil
}
