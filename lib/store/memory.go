package store

import (
	"fmt"
	"sort"
	"sync"

	"clmm/lib/pool"
)

// MemStore keeps pools in a map. The store of choice for tests and
// the scenario runner.
type MemStore struct {
	mu    sync.RWMutex
	pools map[string]*pool.Pool
}

func NewMemStore() *MemStore {
	return &MemStore{pools: make(map[string]*pool.Pool)}
}

func (s *MemStore) Get(id string) (*pool.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pools[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, id)
	}
	return p.Clone(), nil
}

func (s *MemStore) Put(p *pool.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[p.PoolID()] = p.Clone()
	return nil
}

func (s *MemStore) Has(id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pools[id]
	return ok, nil
}

func (s *MemStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.pools))
	for id := range s.pools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemStore) Close() error { return nil }
