// Package memory provides a map-backed Store for tests and standalone runs.
package memory

import (
	"context"
	"sync"

	"github.com/and161185/privchat/internal/storage"
)

// Store is an in-memory implementation of storage.Store. It is safe for
// concurrent use. The optional hooks let tests inject faults per key and
// interleave operations, which is how the dual-write race scenarios are
// reproduced deterministically.
type Store struct {
	mu   sync.Mutex
	data map[string]any

	// WrapInEnvelope makes Get return storage.Envelope{Value: v} instead of
	// the bare value, mimicking backends with a wrapped result shape.
	WrapInEnvelope bool

	// BeforeGet and BeforeSet, when non-nil, run before the operation with
	// no lock held. A non-nil return fails the operation with that error.
	BeforeGet func(key string) error
	BeforeSet func(key string) error
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{data: map[string]any{}}
}

// Get returns the stored value or nil when absent.
func (s *Store) Get(_ context.Context, key string, _ bool) (any, error) {
	if s.BeforeGet != nil {
		if err := s.BeforeGet(key); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	if s.WrapInEnvelope {
		return storage.Envelope{Value: v}, nil
	}
	return v, nil
}

// Set stores the value under key.
func (s *Store) Set(_ context.Context, key string, value any, _ bool) error {
	if s.BeforeSet != nil {
		if err := s.BeforeSet(key); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Dump returns a copy of the current contents, for assertions.
func (s *Store) Dump() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}
