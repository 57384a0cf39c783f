package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer firma un token para un usuario ya autenticado.
type TokenIssuer interface {
	Issue(ctx context.Context, userID int64, username string, permissions []string) (string, Claims, error)
}
