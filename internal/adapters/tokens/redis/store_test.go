package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestStore_SaveCurrentClear(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "alice", "tok-1", 30*time.Minute))
	require.True(t, mr.Exists("token::alice"))

	v, ok, err := s.Current(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok-1", v)

	require.NoError(t, s.Clear(ctx, "alice"))
	_, ok, err = s.Current(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_SaveExpires(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "alice", "tok-1", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := s.Current(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_Revoke(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	revoked, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestStore_UnavailableServer(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()

	_, err := s.IsRevoked(context.Background(), "jti-1")
	require.Error(t, err)
}
