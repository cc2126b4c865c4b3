package session

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// NewHistoryItem builds an item with a fresh id and the current time.
func NewHistoryItem(naturalQuery string, status Status) HistoryItem {
	return HistoryItem{
		ID:           uuid.NewString(),
		NaturalQuery: naturalQuery,
		Timestamp:    time.Now(),
		Status:       status,
	}
}

// AppendHistory records item as the newest entry. History is never trimmed.
func (s *Store) AppendHistory(item HistoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = slices.Insert(s.history, 0, item)
}

// History returns a copy of the history, newest first.
func (s *Store) History() []HistoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

// HistoryItem returns the item with id.
func (s *Store) HistoryItem(id string) (HistoryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.history {
		if h.ID == id {
			return h, true
		}
	}
	return HistoryItem{}, false
}
