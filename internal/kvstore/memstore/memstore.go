// Package memstore is an in-memory kvstore.Store used by tests in place of
// a real external KV driver, in the role the teacher's fake GCS bucket
// (github.com/fsouza/fake-gcs-server, internal/storage/storageutil test
// fakes) plays for gcs.Bucket.
package memstore

import (
	"context"
	"sync"

	"github.com/kvfsfuse/kvfsfuse/internal/identifier"
	"github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"
)

// Store is a goroutine-safe, in-memory kvstore.Store.
type Store struct {
	mu     sync.Mutex
	values map[identifier.ID][]byte
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{values: make(map[identifier.ID][]byte)}
}

func (s *Store) Fetch(_ context.Context, key identifier.ID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, kvfserrors.New("memstore.Fetch", kvfserrors.KindNoEntry)
	}

	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Store(_ context.Context, key identifier.ID, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[key] = cp
	return nil
}

func (s *Store) Delete(_ context.Context, key identifier.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return kvfserrors.New("memstore.Delete", kvfserrors.KindNoEntry)
	}
	delete(s.values, key)
	return nil
}

func (s *Store) Exists(_ context.Context, key identifier.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.values[key]
	return ok, nil
}

// Len returns the number of live keys; test-only helper for asserting that
// deferred deletion actually removed every block (spec.md §8 scenario 3).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}
