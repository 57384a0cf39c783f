package memory

import (
	"context"
	"sync"
	"time"

	"pet-admin-api/internal/ports/tokens"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Store es el fallback sin Redis (dev / tests). Mismas claves que Redis.
type Store struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *Store) set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
}

func (s *Store) get(key string) (string, bool) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		if cur, ok := s.data[key]; ok && cur == e {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return "", false
	}
	return e.value, true
}

func (s *Store) Save(_ context.Context, username, token string, ttl time.Duration) error {
	s.set(tokens.CurrentKey(username), token, ttl)
	return nil
}

func (s *Store) Current(_ context.Context, username string) (string, bool, error) {
	v, ok := s.get(tokens.CurrentKey(username))
	return v, ok, nil
}

func (s *Store) Clear(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, tokens.CurrentKey(username))
	return nil
}

func (s *Store) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.set(tokens.RevokedKey(tokenID), "1", ttl)
	return nil
}

func (s *Store) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := s.get(tokens.RevokedKey(tokenID))
	return ok, nil
}
