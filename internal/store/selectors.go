package store

import "github.com/alexivanou/placefinder/internal/model"

// CurrentPlace returns a copy of the current place, or nil
func (s *Store) CurrentPlace() *model.Place {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentPlace == nil {
		return nil
	}
	p := s.state.CurrentPlace.Clone()
	return &p
}

// History returns a copy of the history, newest first
func (s *Store) History() []model.SearchHistoryItem {
	return s.Snapshot().SearchHistory
}

// HistoryItem looks up a history entry by id
func (s *Store) HistoryItem(id string) (model.SearchHistoryItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.state.SearchHistory {
		if item.ID == id {
			item.Place = item.Place.Clone()
			return item, true
		}
	}
	return model.SearchHistoryItem{}, false
}

// IsLoading reports whether a text search is in flight
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsLoading
}

// ErrorMessage returns the current error message, or "" when there is none
func (s *Store) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Error == nil {
		return ""
	}
	return *s.state.Error
}
