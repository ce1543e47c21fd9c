package survey

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type storeItem struct {
	data      *SurveyData
	expiresAt time.Time
}

func (i *storeItem) expired() bool {
	return time.Now().After(i.expiresAt)
}

// Store holds survey aggregates in memory between requests, keyed by
// id, with TTL eviction. Reads and writes of the same survey exchange
// whole aggregates, so mutation handlers never edit a stored value in
// place.
type Store struct {
	mu    sync.RWMutex
	items map[string]*storeItem
	ttl   time.Duration
}

// NewStore creates a store; entries expire ttl after their last write.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		items: make(map[string]*storeItem),
		ttl:   ttl,
	}
	go s.cleanup()
	return s
}

func (s *Store) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		for id, item := range s.items {
			if item.expired() {
				delete(s.items, id)
			}
		}
		s.mu.Unlock()
	}
}

// Put stores an aggregate, assigning an id if it has none, and returns
// the id. Storing an existing id refreshes its TTL.
func (s *Store) Put(data *SurveyData) string {
	if data.ID == "" {
		data.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[data.ID] = &storeItem{
		data:      data,
		expiresAt: time.Now().Add(s.ttl),
	}
	return data.ID
}

// Get retrieves an aggregate by id.
func (s *Store) Get(id string) (*SurveyData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok || item.expired() {
		return nil, false
	}
	return item.data, true
}

// Delete removes an aggregate.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// Len returns the number of stored surveys, expired entries included
// until the next cleanup pass.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
