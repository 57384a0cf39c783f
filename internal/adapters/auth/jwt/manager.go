package jwt

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"pet-admin-api/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	ErrMissingSecret    = errors.New("jwt secret not configured")
	ErrTokenEmpty       = errors.New("token is empty")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredSignature = errors.New("expired signature")
	ErrInvalidIssuer    = errors.New("invalid issuer")
	ErrInvalidSubject   = errors.New("invalid subject")
	ErrInvalidAudience  = errors.New("invalid audience")
	ErrMissingClaim     = errors.New("missing required claim")
	ErrTokenRejected    = errors.New("token rejected")
)

// Config viene de la configuración del proceso; nada hardcodeado.
type Config struct {
	Secret   []byte
	Issuer   string
	Subject  string
	Audience string
	TTL      time.Duration
}

// tokenClaims es el payload firmado: id, username y permisos más los registered claims.
type tokenClaims struct {
	UserID      int64    `json:"id"`
	Username    string   `json:"username"`
	Permissions []string `json:"permissions"`
	gojwt.RegisteredClaims
}

// Manager emite y verifica tokens HS256.
// Implementa auth.TokenIssuer y auth.AuthVerifier.
type Manager struct {
	cfg Config
	now func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	return &Manager{cfg: cfg, now: time.Now}, nil
}

func (m *Manager) TTL() time.Duration { return m.cfg.TTL }

func (m *Manager) Issue(_ context.Context, userID int64, username string, permissions []string) (string, auth.Claims, error) {
	now := m.now()
	c := tokenClaims{
		UserID:      userID,
		Username:    username,
		Permissions: slices.Clone(permissions),
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   m.cfg.Subject,
			Audience:  gojwt.ClaimStrings{m.cfg.Audience},
			IssuedAt:  gojwt.NewNumericDate(now),
			NotBefore: gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(m.cfg.TTL)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, c).SignedString(m.cfg.Secret)
	if err != nil {
		return "", auth.Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, toClaims(c), nil
}

func (m *Manager) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	// Las validaciones temporales se hacen abajo con m.now (testeable).
	parser := gojwt.NewParser(
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithoutClaimsValidation(),
	)

	var c tokenClaims
	_, err := parser.ParseWithClaims(token, &c, func(t *gojwt.Token) (any, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.cfg.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gojwt.ErrTokenMalformed),
			errors.Is(err, gojwt.ErrTokenSignatureInvalid),
			errors.Is(err, gojwt.ErrTokenUnverifiable):
			return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		default:
			return auth.Claims{}, fmt.Errorf("%w: %v", ErrTokenRejected, err)
		}
	}

	if err := m.validate(c); err != nil {
		return auth.Claims{}, err
	}
	return toClaims(c), nil
}

func (m *Manager) validate(c tokenClaims) error {
	switch {
	case c.ExpiresAt == nil:
		return fmt.Errorf("%w: exp", ErrMissingClaim)
	case c.Subject == "":
		return fmt.Errorf("%w: sub", ErrMissingClaim)
	case len(c.Audience) == 0:
		return fmt.Errorf("%w: aud", ErrMissingClaim)
	}

	now := m.now()
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpiredSignature
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return fmt.Errorf("%w: token not valid yet", ErrTokenRejected)
	}
	if m.cfg.Issuer != "" && c.Issuer != m.cfg.Issuer {
		return ErrInvalidIssuer
	}
	if c.Subject != m.cfg.Subject {
		return ErrInvalidSubject
	}
	if !slices.Contains(c.Audience, m.cfg.Audience) {
		return ErrInvalidAudience
	}
	return nil
}

func toClaims(c tokenClaims) auth.Claims {
	out := auth.Claims{
		UserID:      c.UserID,
		Username:    c.Username,
		Permissions: c.Permissions,
		TokenID:     c.ID,
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
