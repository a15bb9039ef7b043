package services

import (
	"context"
	"sync"

	"github.com/foxxcyber/shopvoice/internal/models"
)

func testDatasets() *models.Datasets {
	return &models.Datasets{
		Catalog: testCatalog(),
		Categories: map[string]string{
			"Milk":   "Dairy",
			"Apples": "Produce",
			"Apple":  "Produce",
			"Tea":    "Beverages",
			"Bread":  "Bakery",
			"Rice":   "Grains",
		},
		Seasonal: map[string][]models.SeasonalEntry{
			"10": {
				{Item: "Pomegranates"},
				{Item: "Sweet potatoes", Reason: "Great for winter evenings."},
			},
		},
		Substitutes: map[string][]string{
			"Milk":  {"Almond milk", "Oat milk"},
			"Bread": {"Brown bread"},
			"Rice":  {"Brown rice", "Quinoa"},
		},
	}
}

func testCatalog() []models.Product {
	return []models.Product{
		{ID: "p1", Name: "Apples", Brand: "FreshFarm", Size: "1kg", Price: 180, Keywords: []string{"apple", "fruit"}},
		{ID: "p2", Name: "Organic Apples", Brand: "GreenLeaf", Size: "1kg", Price: 95, IsOrganic: true, Keywords: []string{"apple", "fruit", "organic"}},
		{ID: "p3", Name: "Organic Apples", Brand: "NatureFresh", Size: "500g", Price: 80, IsOrganic: true, Keywords: []string{"apple", "fruit", "organic"}},
		{ID: "p4", Name: "Toned Milk", Brand: "Amul", Size: "1l", Price: 56, Keywords: []string{"milk", "dairy"}},
		{ID: "p5", Name: "Toothpaste", Brand: "Colgate", Size: "200g", Price: 120, Keywords: []string{"toothpaste", "oral care"}},
		{ID: "p6", Name: "Toothpaste", Brand: "Sensodyne", Size: "100g", Price: 210, Keywords: []string{"toothpaste", "sensitive"}},
	}
}

func productIDs(products []models.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func suggestionItems(suggestions []models.Suggestion) []string {
	items := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		items = append(items, s.Item)
	}
	return items
}

// fakePrimary returns canned responses and counts calls
type fakePrimary struct {
	body  string
	err   error
	calls int
}

func (f *fakePrimary) ParseCommand(context.Context, string, string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

// fakeHistory is a minimal in-memory HistoryRepository
type fakeHistory struct {
	mu         sync.Mutex
	events     []models.HistoryEvent
	aggregates map[string]models.HistoryAggregate
	listErr    error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{aggregates: make(map[string]models.HistoryAggregate)}
}

func (h *fakeHistory) RecordEvent(_ context.Context, ev models.HistoryEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	key := Canonical(ev.Item)
	var prev *models.HistoryAggregate
	if a, ok := h.aggregates[key]; ok {
		prev = &a
	}
	h.aggregates[key] = ApplyEvent(prev, ev)
	return nil
}

func (h *fakeHistory) GetAggregate(_ context.Context, name string) (*models.HistoryAggregate, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a, ok := h.aggregates[Canonical(name)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (h *fakeHistory) ListAggregates(context.Context) (map[string]models.HistoryAggregate, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listErr != nil {
		return nil, h.listErr
	}
	out := make(map[string]models.HistoryAggregate, len(h.aggregates))
	for k, v := range h.aggregates {
		out[k] = v
	}
	return out, nil
}

func (h *fakeHistory) eventTypes() []models.EventType {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]models.EventType, 0, len(h.events))
	for _, ev := range h.events {
		types = append(types, ev.Type)
	}
	return types
}

// fakeSnapshots records saved snapshots and serves a fixed latest one
type fakeSnapshots struct {
	mu     sync.Mutex
	latest []models.ListItem
	saved  []models.ListSnapshot
}

func (s *fakeSnapshots) SaveSnapshot(_ context.Context, snapshot models.ListSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, snapshot)
	return nil
}

func (s *fakeSnapshots) LatestSnapshot(context.Context, string) ([]models.ListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return nil, ErrSnapshotNotFound
	}
	return s.latest, nil
}

// recordingSpeaker keeps everything it was asked to say
type recordingSpeaker struct {
	mu     sync.Mutex
	spoken []string
}

func (r *recordingSpeaker) Speak(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoken = append(r.spoken, text)
}

func (r *recordingSpeaker) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.spoken) == 0 {
		return ""
	}
	return r.spoken[len(r.spoken)-1]
}
