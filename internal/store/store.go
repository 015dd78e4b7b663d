// Package store holds the authoritative PlacesState and the named transitions
// that mutate it. Observers receive an immutable snapshot after every
// transition, in transition order.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alexivanou/placefinder/internal/model"
)

// DefaultHistoryLimit bounds the history length
const DefaultHistoryLimit = 20

// ErrNoSearchPending is returned when a search result arrives with no search in flight
var ErrNoSearchPending = errors.New("no search in progress")

// Observer receives a snapshot after each transition. Observers run
// synchronously and must not dispatch transitions themselves.
type Observer func(state model.PlacesState)

// Store owns PlacesState
type Store struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	state   model.PlacesState
	pending int

	limit  int
	now    func() time.Time
	newID  func() string
	logger *zap.Logger

	observers map[uint64]Observer
	nextObs   uint64
}

// Option configures the Store.
type Option func(*Store)

// WithHistoryLimit sets the maximum history length.
func WithHistoryLimit(limit int) Option {
	return func(s *Store) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the history item id source.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithInitialPlace seeds currentPlace.
func WithInitialPlace(place model.Place) Option {
	return func(s *Store) {
		p := place.Clone()
		s.state.CurrentPlace = &p
	}
}

// WithLogger sets a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store with empty history
func New(opts ...Option) *Store {
	s := &Store{
		state:     model.PlacesState{SearchHistory: []model.SearchHistoryItem{}},
		limit:     DefaultHistoryLimit,
		now:       time.Now,
		newID:     NewHistoryID,
		logger:    zap.NewNop(),
		observers: make(map[uint64]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHistoryID returns a time-ordered random id (UUIDv7)
func NewHistoryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Limit returns the configured history limit
func (s *Store) Limit() int {
	return s.limit
}

// Subscribe registers fn and returns a function that removes it
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() model.PlacesState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// update applies mutate under the lock and, when it reports a change,
// notifies observers before any later transition can notify.
func (s *Store) update(name string, mutate func(st *model.PlacesState) bool) {
	s.mu.Lock()
	if !mutate(&s.state) {
		s.mu.Unlock()
		return
	}
	snapshot := s.state.Clone()
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.logger.Debug("State transition",
		zap.String("transition", name),
		zap.Bool("is_loading", snapshot.IsLoading),
		zap.Int("history", len(snapshot.SearchHistory)),
	)
	for _, fn := range observers {
		fn(snapshot)
	}
}

// SearchBegin marks a text search as in flight and clears the error
func (s *Store) SearchBegin(query string) {
	s.update("searchBegin", func(st *model.PlacesState) bool {
		s.pending++
		st.IsLoading = true
		st.Error = nil
		return true
	})
}

// SearchSucceed completes a search: the place becomes current and is upserted into history
func (s *Store) SearchSucceed(query string, place model.Place) error {
	var err error
	s.update("searchSucceed", func(st *model.PlacesState) bool {
		if s.pending == 0 {
			err = ErrNoSearchPending
			return false
		}
		s.pending--
		st.IsLoading = s.pending > 0
		p := place.Clone()
		st.CurrentPlace = &p
		st.SearchHistory = s.upsert(st.SearchHistory, place, query)
		return true
	})
	return err
}

// SearchFail completes a search with a user facing message
func (s *Store) SearchFail(message string) error {
	var err error
	s.update("searchFail", func(st *model.PlacesState) bool {
		if s.pending == 0 {
			err = ErrNoSearchPending
			return false
		}
		s.pending--
		st.IsLoading = s.pending > 0
		msg := message
		st.Error = &msg
		return true
	})
	return err
}

// SearchAbandon completes a search whose result is no longer wanted. Only
// the loading flag is affected.
func (s *Store) SearchAbandon() error {
	var err error
	s.update("searchAbandon", func(st *model.PlacesState) bool {
		if s.pending == 0 {
			err = ErrNoSearchPending
			return false
		}
		s.pending--
		st.IsLoading = s.pending > 0
		return true
	})
	return err
}

// SetCurrentPlace shows place without touching history
func (s *Store) SetCurrentPlace(place model.Place) {
	s.update("setCurrentPlace", func(st *model.PlacesState) bool {
		p := place.Clone()
		st.CurrentPlace = &p
		return true
	})
}

// SetCurrentPlaceWithHistory shows place and upserts it into history
func (s *Store) SetCurrentPlaceWithHistory(place model.Place, query string) {
	s.update("setCurrentPlaceWithHistory", func(st *model.PlacesState) bool {
		p := place.Clone()
		st.CurrentPlace = &p
		st.SearchHistory = s.upsert(st.SearchHistory, place, query)
		return true
	})
}

// ClearCurrentPlace removes the current place
func (s *Store) ClearCurrentPlace() {
	s.update("clearCurrentPlace", func(st *model.PlacesState) bool {
		if st.CurrentPlace == nil {
			return false
		}
		st.CurrentPlace = nil
		return true
	})
}

// RemoveFromHistory drops the entry with id. Unknown ids are a no-op.
func (s *Store) RemoveFromHistory(id string) bool {
	removed := false
	s.update("removeFromHistory", func(st *model.PlacesState) bool {
		for i, item := range st.SearchHistory {
			if item.ID == id {
				next := make([]model.SearchHistoryItem, 0, len(st.SearchHistory)-1)
				next = append(next, st.SearchHistory[:i]...)
				next = append(next, st.SearchHistory[i+1:]...)
				st.SearchHistory = next
				removed = true
				return true
			}
		}
		return false
	})
	return removed
}

// ClearHistory empties the history
func (s *Store) ClearHistory() {
	s.update("clearHistory", func(st *model.PlacesState) bool {
		st.SearchHistory = []model.SearchHistoryItem{}
		return true
	})
}

// ClearError removes the error without touching isLoading
func (s *Store) ClearError() {
	s.update("clearError", func(st *model.PlacesState) bool {
		if st.Error == nil {
			return false
		}
		st.Error = nil
		return true
	})
}

// Hydrate replaces history with persisted entries. Duplicates by place id
// keep their first (newest) occurrence and the list is cut to the limit.
func (s *Store) Hydrate(history []model.SearchHistoryItem) {
	s.update("hydrate", func(st *model.PlacesState) bool {
		st.SearchHistory = Normalize(history, s.limit)
		return true
	})
}

// upsert removes any entry for place.ID, prepends a fresh one and truncates
func (s *Store) upsert(history []model.SearchHistoryItem, place model.Place, query string) []model.SearchHistoryItem {
	item := model.SearchHistoryItem{
		ID:        s.newID(),
		Query:     query,
		Place:     place.Clone(),
		Timestamp: s.now().UnixMilli(),
	}

	next := make([]model.SearchHistoryItem, 0, len(history)+1)
	next = append(next, item)
	for _, existing := range history {
		if existing.Place.ID == place.ID {
			continue
		}
		if len(next) == s.limit {
			break
		}
		next = append(next, existing)
	}
	return next
}

// Normalize dedupes history by place id, keeping the first occurrence, and truncates to limit
func Normalize(history []model.SearchHistoryItem, limit int) []model.SearchHistoryItem {
	seen := make(map[string]struct{}, len(history))
	out := make([]model.SearchHistoryItem, 0, len(history))
	for _, item := range history {
		if limit > 0 && len(out) == limit {
			break
		}
		if _, dup := seen[item.Place.ID]; dup {
			continue
		}
		seen[item.Place.ID] = struct{}{}
		item.Place = item.Place.Clone()
		out = append(out, item)
	}
	return out
}
