// Package profile persists the mirror owner's settings.
package profile

import (
	"context"
	"errors"
	"sync"
)

// UsernameKey is the storage key the username is saved under.
const UsernameKey = "uname"

var ErrNoUsername = errors.New("no username set")

// Store keeps the username shown on the welcome view.
type Store interface {
	SaveUsername(ctx context.Context, username string) error
	LoadUsername(ctx context.Context) (string, error)
}

// MemoryStore keeps settings for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) SaveUsername(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[UsernameKey] = username
	return nil
}

func (s *MemoryStore) LoadUsername(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[UsernameKey]
	if !ok {
		return "", ErrNoUsername
	}
	return v, nil
}
