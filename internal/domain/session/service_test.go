package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-admin-api/internal/adapters/tokens/memory"
	"pet-admin-api/internal/domain/users"
	"pet-admin-api/internal/ports/auth"
)

type fakeUsers struct {
	user users.User
	err  error
}

func (f fakeUsers) Authenticate(_ context.Context, username, password string) (users.User, error) {
	if f.err != nil {
		return users.User{}, f.err
	}
	return f.user, nil
}

type fakeIssuer struct {
	exp time.Time
	err error
}

func (f fakeIssuer) Issue(_ context.Context, userID int64, username string, perms []string) (string, auth.Claims, error) {
	if f.err != nil {
		return "", auth.Claims{}, f.err
	}
	return "signed-" + username, auth.Claims{
		UserID: userID, Username: username, Permissions: perms, TokenID: "jti-1", ExpiresAt: f.exp,
	}, nil
}

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(u Authenticator, issuer auth.TokenIssuer) (*Service, *memory.Store) {
	store := memory.NewStore()
	svc := NewService(u, issuer, store, 30*time.Minute)
	svc.now = func() time.Time { return t0 }
	return svc, store
}

func TestLogin_MissingCredentials(t *testing.T) {
	svc, _ := newTestService(fakeUsers{}, fakeIssuer{})

	for _, in := range []Credentials{{}, {Username: "alice"}, {Password: "x"}, {Username: "  ", Password: "x"}} {
		if _, err := svc.Login(context.Background(), in); !errors.Is(err, ErrMissingCredentials) {
			t.Fatalf("Login(%+v) err=%v, want ErrMissingCredentials", in, err)
		}
	}
}

func TestLogin_WrongCredentialsPassThrough(t *testing.T) {
	svc, _ := newTestService(fakeUsers{err: users.ErrWrongCredentials}, fakeIssuer{})

	_, err := svc.Login(context.Background(), Credentials{Username: "alice", Password: "bad"})
	if !errors.Is(err, users.ErrWrongCredentials) {
		t.Fatalf("expected ErrWrongCredentials, got %v", err)
	}
}

func TestLogin_SavesCurrentToken(t *testing.T) {
	u := users.User{ID: 7, Username: "alice", Permissions: []string{"/pet/*"}}
	svc, store := newTestService(fakeUsers{user: u}, fakeIssuer{exp: t0.Add(30 * time.Minute)})

	tok, err := svc.Login(context.Background(), Credentials{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok.AccessToken != "signed-alice" || tok.TokenType != "Bearer" || tok.ExpiresIn != 1800 {
		t.Fatalf("unexpected token %+v", tok)
	}

	cur, ok, _ := store.Current(context.Background(), "alice")
	if !ok || cur != "signed-alice" {
		t.Fatalf("expected token::alice saved, got %q ok=%v", cur, ok)
	}
}

func TestLogin_IssueFailure(t *testing.T) {
	svc, _ := newTestService(fakeUsers{user: users.User{ID: 1, Username: "alice"}}, fakeIssuer{err: errors.New("boom")})

	_, err := svc.Login(context.Background(), Credentials{Username: "alice", Password: "x"})
	if !errors.Is(err, ErrTokenCreation) {
		t.Fatalf("expected ErrTokenCreation, got %v", err)
	}
}

func TestLogout_RevokesAndClears(t *testing.T) {
	u := users.User{ID: 7, Username: "alice"}
	svc, store := newTestService(fakeUsers{user: u}, fakeIssuer{exp: t0.Add(30 * time.Minute)})
	ctx := context.Background()

	if _, err := svc.Login(ctx, Credentials{Username: "alice", Password: "x"}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims := auth.Claims{UserID: 7, Username: "alice", TokenID: "jti-1", ExpiresAt: t0.Add(30 * time.Minute)}
	if err := svc.Logout(ctx, claims, "signed-alice"); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if revoked, _ := store.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatalf("expected jti revoked")
	}
	if _, ok, _ := store.Current(ctx, "alice"); ok {
		t.Fatalf("expected token::alice cleared")
	}
}

func TestLogout_WithoutClaims(t *testing.T) {
	svc, _ := newTestService(fakeUsers{}, fakeIssuer{})

	if err := svc.Logout(context.Background(), auth.Claims{}, ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestLogout_KeepsNewerSessionCached(t *testing.T) {
	u := users.User{ID: 7, Username: "alice"}
	svc, store := newTestService(fakeUsers{user: u}, fakeIssuer{exp: t0.Add(30 * time.Minute)})
	ctx := context.Background()

	if _, err := svc.Login(ctx, Credentials{Username: "alice", Password: "x"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	// otra sesión reemplazó el token vigente
	if err := store.Save(ctx, "alice", "signed-alice-2", time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}

	claims := auth.Claims{UserID: 7, Username: "alice", TokenID: "jti-1", ExpiresAt: t0.Add(30 * time.Minute)}
	if err := svc.Logout(ctx, claims, "signed-alice"); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if revoked, _ := store.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatalf("expected jti revoked")
	}
	if cur, ok, _ := store.Current(ctx, "alice"); !ok || cur != "signed-alice-2" {
		t.Fatalf("newer token must stay cached, got %q ok=%v", cur, ok)
	}
}
