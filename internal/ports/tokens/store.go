package tokens

import (
	"context"
	"time"
)

// Store guarda el token vigente por usuario y los jti revocados.
// Ambas entradas expiran solas (ttl), nunca viven más que el token.
type Store interface {
	Save(ctx context.Context, username, token string, ttl time.Duration) error
	Current(ctx context.Context, username string) (string, bool, error)
	Clear(ctx context.Context, username string) error

	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

func CurrentKey(username string) string { return "token::" + username }

func RevokedKey(tokenID string) string { return "revoked::" + tokenID }
