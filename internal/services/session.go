package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/foxxcyber/shopvoice/internal/models"
)

// Session owns one user's list and active suggestions. Every mutation builds
// a new slice and swaps it under the lock, so readers never see a half-applied change.
type Session struct {
	owner     string
	router    *CommandRouter
	history   HistoryRepository
	snapshots SnapshotStore
	speaker   Speaker
	now       func() time.Time

	hydrateOnce sync.Once

	mu            sync.Mutex
	items         []models.ListItem
	suggestions   []models.Suggestion
	lastUtterance string
	busy          bool
	closed        bool
	generation    uint64
}

// NewSession creates an empty session. snapshots and speaker may be nil.
func NewSession(owner string, router *CommandRouter, history HistoryRepository, snapshots SnapshotStore, speaker Speaker) *Session {
	if speaker == nil {
		speaker = NopSpeaker{}
	}
	return &Session{
		owner:       owner,
		router:      router,
		history:     history,
		snapshots:   snapshots,
		speaker:     speaker,
		now:         time.Now,
		items:       []models.ListItem{},
		suggestions: []models.Suggestion{},
	}
}

// Owner returns the id of the user the session belongs to
func (s *Session) Owner() string {
	return s.owner
}

// Items returns a copy of the current list
func (s *Session) Items() []models.ListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Suggestions returns a copy of the active suggestions
func (s *Session) Suggestions() []models.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.suggestions)
}

// Close marks the session dead. Work still in flight is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.generation++
}

// Supersede invalidates any utterance currently being processed
func (s *Session) Supersede() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// SubmitTranscript runs a finalized transcript through the router and commits
// the result. Non-final transcripts return (nil, nil). The same utterance is
// never processed twice in a row and only one runs at a time.
func (s *Session) SubmitTranscript(ctx context.Context, transcript, lang string, finalized bool) (*CommandResult, error) {
	text := strings.TrimSpace(transcript)
	if !finalized || text == "" {
		return nil, nil
	}

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return nil, ErrSessionClosed
	case text == s.lastUtterance:
		s.mu.Unlock()
		return nil, ErrDuplicateUtterance
	case s.busy:
		s.mu.Unlock()
		return nil, ErrPipelineBusy
	}
	s.busy = true
	s.lastUtterance = text
	gen := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	d := s.router.Interpret(ctx, text, lang)

	var aggregates map[string]models.HistoryAggregate
	if d.NeedsAggregates() {
		aggregates = s.loadAggregates(ctx)
	}

	s.mu.Lock()
	if err := s.liveLocked(ctx, gen); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	result := s.router.Apply(d, s.items, aggregates, s.now())
	s.items = result.Items
	if result.SuggestionUpdate == SuggestionsReplace {
		s.suggestions = result.Suggestions
	}
	s.mu.Unlock()

	log.Debug().
		Str("owner", s.owner).
		Str("route", string(d.Route)).
		Bool("fallback", d.UsedFallback).
		Msg("utterance applied")

	if result.ListChanged {
		var extra []models.Suggestion
		if result.SuggestionUpdate == SuggestionsMerge {
			extra = result.Suggestions
		}
		s.afterMutation(ctx, gen, result.Events, extra, "voice")
	}

	s.speaker.Speak(result.Status)

	s.mu.Lock()
	result.Items = slices.Clone(s.items)
	result.Suggestions = slices.Clone(s.suggestions)
	s.mu.Unlock()
	return result, nil
}

// Hydrate seeds a nearly empty list (at most one item) from the latest saved
// snapshot. It runs once per session.
func (s *Session) Hydrate(ctx context.Context) error {
	var err error
	s.hydrateOnce.Do(func() {
		err = s.hydrate(ctx)
	})
	return err
}

func (s *Session) hydrate(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}

	s.mu.Lock()
	n := len(s.items)
	s.mu.Unlock()
	if n > 1 {
		return nil
	}

	items, err := s.snapshots.LatestSnapshot(ctx, s.owner)
	if errors.Is(err, ErrSnapshotNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if len(s.items) <= 1 {
		s.items = slices.Clone(items)
	}
	gen := s.generation
	s.mu.Unlock()

	s.refreshSuggestions(ctx, gen, nil)
	return nil
}

// RefreshSuggestions recomputes the active suggestions from the list and history
func (s *Session) RefreshSuggestions(ctx context.Context) []models.Suggestion {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	s.refreshSuggestions(ctx, gen, nil)
	return s.Suggestions()
}

// AcceptSuggestion puts a suggested item on the list and records the feedback
func (s *Session) AcceptSuggestion(ctx context.Context, name string) (models.ListItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ListItem{}, ErrItemNotFound
	}

	var added models.ListItem
	err := s.mutate(ctx, "accept-suggestion", func(items []models.ListItem, now time.Time) (*mutation, error) {
		next, item := AddItem(items, Singularize(name), capitalize(name), 1)
		added = item
		return &mutation{
			items:  next,
			events: []models.HistoryEvent{NewEvent(s.router.datasets, models.EventAcceptSuggestion, name, 1, now)},
			status: "Added: " + item.Name,
		}, nil
	})
	return added, err
}

// RejectSuggestion drops name from the active suggestions and records the feedback
func (s *Session) RejectSuggestion(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.suggestions = WithoutSuggestion(s.suggestions, name)
	s.mu.Unlock()

	ev := NewEvent(s.router.datasets, models.EventRejectSuggestion, name, 1, s.now())
	if err := s.history.RecordEvent(ctx, ev); err != nil {
		return fmt.Errorf("failed to record rejection: %w", err)
	}
	return nil
}

// Increment raises the quantity of item id by one
func (s *Session) Increment(ctx context.Context, id string) error {
	return s.mutate(ctx, "increment", func(items []models.ListItem, _ time.Time) (*mutation, error) {
		next, ok := IncrementByID(items, id)
		if !ok {
			return nil, ErrItemNotFound
		}
		return &mutation{items: next}, nil
	})
}

// Decrement lowers the quantity of item id by one, never below 1
func (s *Session) Decrement(ctx context.Context, id string) error {
	return s.mutate(ctx, "decrement", func(items []models.ListItem, _ time.Time) (*mutation, error) {
		next, ok := DecrementByID(items, id)
		if !ok {
			return nil, ErrItemNotFound
		}
		return &mutation{items: next}, nil
	})
}

// ToggleBought flips the bought flag of item id. Only marking an item bought is recorded.
func (s *Session) ToggleBought(ctx context.Context, id string) error {
	return s.mutate(ctx, "toggle-bought", func(items []models.ListItem, now time.Time) (*mutation, error) {
		next, ok := ToggleBoughtByID(items, id)
		if !ok {
			return nil, ErrItemNotFound
		}
		m := &mutation{items: next}
		before, after := items[FindItemByID(items, id)], next[FindItemByID(next, id)]
		if !before.Bought && after.Bought {
			m.events = []models.HistoryEvent{NewEvent(s.router.datasets, models.EventBought, after.Name, after.Quantity, now)}
		}
		return m, nil
	})
}

// Delete removes item id and offers its substitutes
func (s *Session) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete", func(items []models.ListItem, now time.Time) (*mutation, error) {
		idx := FindItemByID(items, id)
		if idx < 0 {
			return nil, ErrItemNotFound
		}
		victim := items[idx]
		return &mutation{
			items:  DeleteAt(items, idx),
			events: []models.HistoryEvent{NewEvent(s.router.datasets, models.EventRemove, victim.Name, victim.Quantity, now)},
			extra:  s.router.Engine().SuggestSubstitutesFor(victim.Name, items),
		}, nil
	})
}

// AddProduct adds a catalog product to the list under its full display name
func (s *Session) AddProduct(ctx context.Context, product models.Product) (models.ListItem, error) {
	var added models.ListItem
	err := s.mutate(ctx, "catalog-add", func(items []models.ListItem, now time.Time) (*mutation, error) {
		name := product.DisplayName()
		next, item := AddItem(items, name, name, 1)
		added = item
		return &mutation{
			items:  next,
			events: []models.HistoryEvent{NewEvent(s.router.datasets, models.EventAdd, item.Name, 1, now)},
			status: "Added: " + item.Name,
		}, nil
	})
	return added, err
}

// mutation is the outcome of a manual list operation
type mutation struct {
	items  []models.ListItem
	events []models.HistoryEvent
	extra  []models.Suggestion
	status string
}

func (s *Session) mutate(ctx context.Context, reason string, fn func(items []models.ListItem, now time.Time) (*mutation, error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	m, err := fn(s.items, s.now())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.items = m.items
	gen := s.generation
	s.mu.Unlock()

	s.afterMutation(ctx, gen, m.events, m.extra, reason)
	if m.status != "" {
		s.speaker.Speak(m.status)
	}
	return nil
}

// afterMutation records events, recomputes suggestions and saves a snapshot.
// Persistence failures are logged; the in-memory list is already committed.
func (s *Session) afterMutation(ctx context.Context, gen uint64, events []models.HistoryEvent, extra []models.Suggestion, reason string) {
	for _, ev := range events {
		if err := s.history.RecordEvent(ctx, ev); err != nil {
			log.Warn().Err(err).Str("owner", s.owner).Str("type", string(ev.Type)).Msg("failed to record history event")
		}
	}
	s.refreshSuggestions(ctx, gen, extra)
	s.saveSnapshot(ctx, reason)
}

func (s *Session) refreshSuggestions(ctx context.Context, gen uint64, extra []models.Suggestion) {
	aggregates := s.loadAggregates(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.liveLocked(ctx, gen); err != nil {
		return
	}
	fresh := s.router.Engine().Generate(s.items, aggregates, s.now())
	if len(extra) > 0 {
		fresh = MergeSuggestions(fresh, extra)
	}
	s.suggestions = fresh
}

func (s *Session) loadAggregates(ctx context.Context) map[string]models.HistoryAggregate {
	aggregates, err := s.history.ListAggregates(ctx)
	if err != nil {
		log.Warn().Err(err).Str("owner", s.owner).Msg("failed to load history aggregates")
		return nil
	}
	return aggregates
}

func (s *Session) saveSnapshot(ctx context.Context, reason string) {
	if s.snapshots == nil {
		return
	}
	snapshot := models.ListSnapshot{Owner: s.owner, Items: s.Items(), Reason: reason}
	if err := s.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		log.Warn().Err(err).Str("owner", s.owner).Msg("failed to save list snapshot")
	}
}

func (s *Session) liveLocked(ctx context.Context, gen uint64) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if gen != s.generation {
		return ErrSuperseded
	}
	return nil
}

// SessionRegistry hands out one session per owner
type SessionRegistry struct {
	router    *CommandRouter
	histories HistoryStore
	snapshots SnapshotStore
	speaker   Speaker

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry creates a registry whose sessions share the given collaborators
func NewSessionRegistry(router *CommandRouter, histories HistoryStore, snapshots SnapshotStore, speaker Speaker) *SessionRegistry {
	return &SessionRegistry{
		router:    router,
		histories: histories,
		snapshots: snapshots,
		speaker:   speaker,
		sessions:  make(map[string]*Session),
	}
}

// Get returns the session for owner, creating and hydrating it on first use
func (r *SessionRegistry) Get(ctx context.Context, owner string) *Session {
	r.mu.Lock()
	sess, ok := r.sessions[owner]
	if !ok {
		sess = NewSession(owner, r.router, r.histories.History(owner), r.snapshots, r.speaker)
		r.sessions[owner] = sess
	}
	r.mu.Unlock()

	if err := sess.Hydrate(ctx); err != nil {
		log.Warn().Err(err).Str("owner", owner).Msg("could not hydrate list from snapshot")
	}
	return sess
}

// Close closes and forgets the session for owner
func (r *SessionRegistry) Close(owner string) {
	r.mu.Lock()
	sess, ok := r.sessions[owner]
	delete(r.sessions, owner)
	r.mu.Unlock()

	if ok {
		sess.Close()
	}
}

// CloseAll closes every session, used on shutdown
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
