// Package cache is the in-process read-through cache behind the repository
// decorators.
package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is a TTL map with single-flight loading. A ttl <= 0 keeps entries
// until they are deleted.
//
// Every delete bumps a generation counter. A load that started before a delete
// does not store its result, so a write followed by an invalidation is never
// shadowed by a slow read from before the write.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu         sync.RWMutex
	entries    map[string]entry
	generation uint64

	flight singleflight.Group
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || key == "" {
		return nil, false
	}
	if s.expired(e) {
		s.mu.Lock()
		if current, ok := s.entries[key]; ok && s.expired(current) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.entries[key] = s.newEntry(value)
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.generation++
	s.mu.Unlock()
}

// DeletePrefix drops every key under any of the prefixes.
func (s *Store) DeletePrefix(_ context.Context, prefixes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		for _, prefix := range prefixes {
			if prefix != "" && strings.HasPrefix(key, prefix) {
				delete(s.entries, key)
				break
			}
		}
	}
	s.generation++
}

// GetOrLoad returns the cached value or runs loader once for all concurrent
// callers of the same key and generation. Loader errors are not cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, errors.New("cache loader is required")
	}
	if key == "" {
		return loader(ctx)
	}
	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	generation := s.currentGeneration()
	value, err, _ := s.flight.Do(strconv.FormatUint(generation, 10)+"|"+key, func() (any, error) {
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.generation == generation {
			s.entries[key] = s.newEntry(loaded)
		}
		s.mu.Unlock()
		return loaded, nil
	})
	return value, err
}

func (s *Store) currentGeneration() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Store) newEntry(value any) entry {
	e := entry{value: value}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	return e
}

func (s *Store) expired(e entry) bool {
	return s.ttl > 0 && !e.expiresAt.After(s.now())
}
