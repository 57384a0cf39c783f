package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pet-admin-api/internal/platform/logger"
	"pet-admin-api/internal/platform/response"
	"pet-admin-api/internal/ports/auth"
)

var (
	ErrMissingAuthorization   = errors.New("missing Authorization header")
	ErrMalformedAuthorization = errors.New("authorization header must use Bearer scheme")
	ErrUserNotFound           = errors.New("user not found")
)

// ActorLookup busca al usuario (vivo) por username.
type ActorLookup interface {
	ActorByUsername(ctx context.Context, username string) (auth.Actor, error)
}

// IdentityResolver obtiene el usuario actual para estampar auditoría.
// Verifica el token por su cuenta, no depende de lo que dejó el gate.
type IdentityResolver struct {
	verifier auth.AuthVerifier
	users    ActorLookup
}

func NewIdentityResolver(verifier auth.AuthVerifier, users ActorLookup) *IdentityResolver {
	return &IdentityResolver{verifier: verifier, users: users}
}

func (i *IdentityResolver) Resolve(r *http.Request) (auth.Actor, error) {
	header := r.Header.Get("Authorization")
	if strings.TrimSpace(header) == "" {
		return auth.Actor{}, ErrMissingAuthorization
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return auth.Actor{}, ErrMalformedAuthorization
	}

	claims, err := i.verifier.Verify(r.Context(), strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return auth.Actor{}, fmt.Errorf("verify token: %w", err)
	}

	a, err := i.users.ActorByUsername(r.Context(), claims.Username)
	if err != nil {
		logger.FromContext(r.Context()).Debug("identity lookup failed", map[string]any{
			"username": claims.Username,
			"err":      err.Error(),
		})
		return auth.Actor{}, ErrUserNotFound
	}
	return a, nil
}

// RequireActor resuelve el usuario actual y lo deja en el context.
// Se usa solo en rutas que mutan entidades.
func RequireActor(i *IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, err := i.Resolve(r)
			if err != nil {
				response.ErrorWithCode(w, http.StatusUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), a)))
		})
	}
}
