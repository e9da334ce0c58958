package dal

import (
	"strings"
	"sync"
	"time"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

// MemoryDAL implements LeagueDAL using in-memory storage
type MemoryDAL struct {
	mu      sync.RWMutex
	leagues map[string]models.League
	now     func() time.Time
}

// NewMemoryDAL creates a new in-memory data access layer
func NewMemoryDAL() *MemoryDAL {
	return &MemoryDAL{
		leagues: make(map[string]models.League),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryDAL) ListLeagues() ([]models.League, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.League, 0, len(m.leagues))
	for _, l := range m.leagues {
		out = append(out, l)
	}
	sortByLastUsed(out)
	return out, nil
}

func (m *MemoryDAL) GetLeague(name string) (*models.League, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.leagues[strings.TrimSpace(name)]
	if !ok {
		return nil, ErrLeagueNotFound
	}
	return &l, nil
}

func (m *MemoryDAL) AddLeague(name, draftURL, draftID string) (*models.League, error) {
	l, err := newLeague(name, draftURL, draftID, m.now())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.leagues[l.Name]; exists {
		return nil, ErrLeagueExists
	}
	m.leagues[l.Name] = l
	return &l, nil
}

func (m *MemoryDAL) UpdateLeague(name, draftURL, draftID string) (*models.League, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.leagues[strings.TrimSpace(name)]
	if !ok {
		return nil, ErrLeagueNotFound
	}
	l.DraftURL = strings.TrimSpace(draftURL)
	l.DraftID = strings.TrimSpace(draftID)
	l.LastUsed = m.now()
	m.leagues[l.Name] = l
	return &l, nil
}

func (m *MemoryDAL) DeleteLeague(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = strings.TrimSpace(name)
	if _, ok := m.leagues[name]; !ok {
		return ErrLeagueNotFound
	}
	delete(m.leagues, name)
	return nil
}

func (m *MemoryDAL) MarkUsed(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.leagues[strings.TrimSpace(name)]
	if !ok {
		return ErrLeagueNotFound
	}
	l.LastUsed = m.now()
	m.leagues[l.Name] = l
	return nil
}

func (m *MemoryDAL) Export() ([]byte, error) {
	leagues, err := m.ListLeagues()
	if err != nil {
		return nil, err
	}
	return exportLeagues(leagues)
}

func (m *MemoryDAL) Import(data []byte) (int, error) {
	leagues, err := parseImport(data, m.now())
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range leagues {
		m.leagues[l.Name] = l
	}
	return len(leagues), nil
}

func (m *MemoryDAL) Close() error {
	return nil
}
