package middleware

import (
	"context"
	"strings"

	"pet-admin-api/internal/ports/auth"
)

type ctxKey string

const (
	claimsKey ctxKey = "claims"
	actorKey  ctxKey = "actor"
)

// UserIDHeader lleva el id del usuario autenticado hacia los handlers.
const UserIDHeader = "X-User-ID"

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

func WithActor(ctx context.Context, a auth.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

func GetActor(ctx context.Context) (auth.Actor, bool) {
	a, ok := ctx.Value(actorKey).(auth.Actor)
	return a, ok
}

// BearerToken extrae el token de un header "Bearer <token>"; vacío si no aplica.
func BearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
