package session

import (
	"context"
	"sync"
	"time"

	domainsession "github.com/riskibarqy/prediction-pool/internal/domain/session"
)

// MemoryStore keeps sessions in process. Entries expire at their own
// ExpiresAt; once maxEntries is reached the soonest-expiring one is evicted.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]domainsession.Session
	maxEntries int
	now        func() time.Time
}

func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]domainsession.Session),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, item domainsession.Session) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[item.Token]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictExpired(now)
		if len(s.entries) >= s.maxEntries {
			s.evictOne()
		}
	}

	s.entries[item.Token] = item
	return nil
}

func (s *MemoryStore) Load(_ context.Context, token string) (domainsession.Session, bool, error) {
	now := s.now()

	s.mu.RLock()
	item, ok := s.entries[token]
	s.mu.RUnlock()
	if !ok {
		return domainsession.Session{}, false, nil
	}
	if item.Expired(now) {
		s.mu.Lock()
		delete(s.entries, token)
		s.mu.Unlock()
		return domainsession.Session{}, false, nil
	}

	return item, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
	return nil
}

// DeleteByPlayer drops every session owned by playerID, used when the player is removed.
func (s *MemoryStore) DeleteByPlayer(_ context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, item := range s.entries {
		if item.PlayerID == playerID {
			delete(s.entries, token)
		}
	}
	return nil
}

func (s *MemoryStore) evictExpired(now time.Time) {
	for token, item := range s.entries {
		if item.Expired(now) {
			delete(s.entries, token)
		}
	}
}

func (s *MemoryStore) evictOne() {
	var (
		victim string
		soon   time.Time
	)
	for token, item := range s.entries {
		if victim == "" || item.ExpiresAt.Before(soon) {
			victim, soon = token, item.ExpiresAt
		}
	}
	delete(s.entries, victim)
}
