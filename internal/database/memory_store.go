package database

import (
	"context"
	"slices"
	"sync"

	"github.com/foxxcyber/shopvoice/internal/models"
	"github.com/foxxcyber/shopvoice/internal/services"
)

// MemoryStore keeps history and snapshots in process memory. It is used when
// no DATABASE_URL is configured and in tests.
type MemoryStore struct {
	mu         sync.RWMutex
	events     map[string][]models.HistoryEvent
	aggregates map[string]map[string]models.HistoryAggregate
	snapshots  map[string][]models.ListSnapshot
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:     make(map[string][]models.HistoryEvent),
		aggregates: make(map[string]map[string]models.HistoryAggregate),
		snapshots:  make(map[string][]models.ListSnapshot),
	}
}

// History returns the history repository for owner
func (m *MemoryStore) History(owner string) services.HistoryRepository {
	return &memoryHistory{store: m, owner: owner}
}

// Events returns a copy of the owner's event log, oldest first
func (m *MemoryStore) Events(owner string) []models.HistoryEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.events[owner])
}

// SaveSnapshot stores a copy of the snapshot
func (m *MemoryStore) SaveSnapshot(_ context.Context, snapshot models.ListSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot.Items = slices.Clone(snapshot.Items)
	m.snapshots[snapshot.Owner] = append(m.snapshots[snapshot.Owner], snapshot)
	return nil
}

// LatestSnapshot returns the items of the owner's most recent snapshot
func (m *MemoryStore) LatestSnapshot(_ context.Context, owner string) ([]models.ListItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	saved := m.snapshots[owner]
	if len(saved) == 0 {
		return nil, services.ErrSnapshotNotFound
	}
	return slices.Clone(saved[len(saved)-1].Items), nil
}

// SnapshotCount returns how many snapshots the owner has saved
func (m *MemoryStore) SnapshotCount(owner string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots[owner])
}

type memoryHistory struct {
	store *MemoryStore
	owner string
}

func (h *memoryHistory) RecordEvent(_ context.Context, ev models.HistoryEvent) error {
	key := services.Canonical(ev.Item)
	if key == "" {
		return nil
	}

	m := h.store
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events[h.owner] = append(m.events[h.owner], ev)

	aggs, ok := m.aggregates[h.owner]
	if !ok {
		aggs = make(map[string]models.HistoryAggregate)
		m.aggregates[h.owner] = aggs
	}
	var prev *models.HistoryAggregate
	if a, ok := aggs[key]; ok {
		prev = &a
	}
	aggs[key] = services.ApplyEvent(prev, ev)
	return nil
}

func (h *memoryHistory) GetAggregate(_ context.Context, name string) (*models.HistoryAggregate, error) {
	m := h.store
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.aggregates[h.owner][services.Canonical(name)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (h *memoryHistory) ListAggregates(_ context.Context) (map[string]models.HistoryAggregate, error) {
	m := h.store
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]models.HistoryAggregate, len(m.aggregates[h.owner]))
	for k, v := range m.aggregates[h.owner] {
		out[k] = v
	}
	return out, nil
}
