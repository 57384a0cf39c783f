package memory

import (
	"context"
	"testing"
	"time"
)

func TestStore_ExpiresEntries(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if err := s.Save(ctx, "alice", "tok", time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if v, ok, _ := s.Current(ctx, "alice"); !ok || v != "tok" {
		t.Fatalf("expected current token, got %q ok=%v", v, ok)
	}
	if revoked, _ := s.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatalf("expected jti-1 revoked")
	}

	now = now.Add(2 * time.Minute)

	if _, ok, _ := s.Current(ctx, "alice"); ok {
		t.Fatalf("expected token expired")
	}
	if revoked, _ := s.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatalf("expected revocation expired")
	}
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_ = s.Save(ctx, "alice", "tok", time.Hour)
	_ = s.Clear(ctx, "alice")

	if _, ok, _ := s.Current(ctx, "alice"); ok {
		t.Fatalf("expected token cleared")
	}
}
