package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-admin-api/internal/ports/tokens"

	goredis "github.com/redis/go-redis/v9"
)

// Store implementa tokens.Store sobre Redis.
type Store struct {
	client goredis.UniversalClient
}

func NewStore(client goredis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) Save(ctx context.Context, username, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokens.CurrentKey(username), token, ttl).Err(); err != nil {
		return fmt.Errorf("redis save token: %w", err)
	}
	return nil
}

func (s *Store) Current(ctx context.Context, username string) (string, bool, error) {
	v, err := s.client.Get(ctx, tokens.CurrentKey(username)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get token: %w", err)
	}
	return v, true, nil
}

func (s *Store) Clear(ctx context.Context, username string) error {
	if err := s.client.Del(ctx, tokens.CurrentKey(username)).Err(); err != nil {
		return fmt.Errorf("redis clear token: %w", err)
	}
	return nil
}

func (s *Store) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// ya expiró: no hace falta recordarlo
		return nil
	}
	if err := s.client.Set(ctx, tokens.RevokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke: %w", err)
	}
	return nil
}

func (s *Store) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, tokens.RevokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis revoked lookup: %w", err)
	}
	return n > 0, nil
}
