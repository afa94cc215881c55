package store

import (
	"sync"

	"github.com/i474232898/smart-mirror/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory holder of the mirror's weather
// view state. Only the current snapshot is kept; every publish replaces it.
type MemoryStore struct {
	mu sync.RWMutex

	current *weather.DisplaySnapshot
}

// NewMemoryStore creates a store with no current snapshot.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SetCurrent replaces the current snapshot. nil clears it.
func (s *MemoryStore) SetCurrent(snapshot *weather.DisplaySnapshot) {
	var stored *weather.DisplaySnapshot
	if snapshot != nil {
		cp := *snapshot
		stored = &cp
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = stored
}

// Current returns a copy of the current snapshot, or nil.
func (s *MemoryStore) Current() *weather.DisplaySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// View returns the view state as the rendering layer sees it.
func (s *MemoryStore) View() weather.ViewState {
	return weather.ViewState{Current: s.Current()}
}
