package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-admin-api/internal/domain/users"
	"pet-admin-api/internal/platform/logger"
	"pet-admin-api/internal/ports/auth"
	"pet-admin-api/internal/ports/tokens"
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrTokenCreation      = errors.New("token creation error")
	ErrNoSession          = errors.New("no authenticated session")
)

// Authenticator valida username/password. Lo implementa users.Service.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (users.User, error)
}

type Service struct {
	users  Authenticator
	issuer auth.TokenIssuer
	store  tokens.Store
	ttl    time.Duration
	now    func() time.Time
}

// NewService: ttl debe coincidir con el exp del issuer, es el TTL de las claves en store.
func NewService(u Authenticator, issuer auth.TokenIssuer, store tokens.Store, ttl time.Duration) *Service {
	return &Service{
		users:  u,
		issuer: issuer,
		store:  store,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Service) Login(ctx context.Context, in Credentials) (Token, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return Token{}, ErrMissingCredentials
	}

	u, err := s.users.Authenticate(ctx, username, in.Password)
	if err != nil {
		return Token{}, err
	}

	signed, claims, err := s.issuer.Issue(ctx, u.ID, u.Username, u.Permissions)
	if err != nil {
		logger.FromContext(ctx).Error("issue token failed", map[string]any{"username": u.Username, "err": err.Error()})
		return Token{}, fmt.Errorf("%w: %v", ErrTokenCreation, err)
	}

	// sin la entrada en store el logout no podría limpiar la sesión
	if err := s.store.Save(ctx, u.Username, signed, s.ttl); err != nil {
		logger.FromContext(ctx).Error("save token failed", map[string]any{"username": u.Username, "err": err.Error()})
		return Token{}, fmt.Errorf("%w: %v", ErrTokenCreation, err)
	}

	expiresIn := int64(s.ttl / time.Second)
	if !claims.ExpiresAt.IsZero() {
		expiresIn = int64(claims.ExpiresAt.Sub(s.now()) / time.Second)
	}
	return Token{AccessToken: signed, TokenType: tokenType, ExpiresIn: expiresIn}, nil
}

// Logout revoca el jti hasta que el token expire. token::<username> se borra
// solo si sigue apuntando a token; un login posterior desde otra sesión no se pisa.
func (s *Service) Logout(ctx context.Context, claims auth.Claims, token string) error {
	if claims.Username == "" {
		return ErrNoSession
	}

	if claims.TokenID != "" {
		ttl := s.ttl
		if !claims.ExpiresAt.IsZero() {
			ttl = claims.ExpiresAt.Sub(s.now())
		}
		if err := s.store.Revoke(ctx, claims.TokenID, ttl); err != nil {
			return fmt.Errorf("logout: revoke: %w", err)
		}
	}

	cur, ok, err := s.store.Current(ctx, claims.Username)
	if err != nil {
		return fmt.Errorf("logout: current: %w", err)
	}
	if !ok || cur != token {
		return nil
	}
	if err := s.store.Clear(ctx, claims.Username); err != nil {
		return fmt.Errorf("logout: clear: %w", err)
	}
	return nil
}
