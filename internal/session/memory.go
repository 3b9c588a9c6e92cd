package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default single-process Store. Entries older than ttl are
// removed by Sweep, closing the leak a permanently silent user would cause.
type MemoryStore struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[int64]*Conversation

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewMemoryStore constructs an in-memory store with the given idle TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[int64]*Conversation),
		locks:   make(map[int64]*sync.Mutex),
	}
}

// Get returns the user's conversation if present.
func (s *MemoryStore) Get(_ context.Context, userID int64) (*Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.entries[userID]
	return conv, ok
}

// Put stores the conversation, superseding any previous one, and refreshes
// its TTL stamp.
func (s *MemoryStore) Put(_ context.Context, userID int64, conv *Conversation) {
	if conv == nil {
		return
	}
	conv.UpdatedAt = time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = conv
}

// Delete removes the user's conversation.
func (s *MemoryStore) Delete(_ context.Context, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// Len reports the number of active conversations.
func (s *MemoryStore) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Serialize runs fn under the user's lock so transitions cannot interleave.
func (s *MemoryStore) Serialize(userID int64, fn func() error) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func (s *MemoryStore) userLock(userID int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[userID] = mu
	}
	return mu
}

// Sweep evicts conversations idle longer than the TTL and returns how many
// were removed. The per-user locks of evicted users are dropped as well.
func (s *MemoryStore) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	var stale []int64
	for userID, conv := range s.entries {
		if now.Sub(conv.UpdatedAt) > s.ttl {
			stale = append(stale, userID)
			delete(s.entries, userID)
		}
	}
	s.mu.Unlock()

	s.locksMu.Lock()
	for _, userID := range stale {
		delete(s.locks, userID)
	}
	s.locksMu.Unlock()
	return len(stale)
}
