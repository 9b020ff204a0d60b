package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

func TestKeys(t *testing.T) {
	if got := sessionKey("abc"); got != "portal:session:abc" {
		t.Fatalf("sessionKey = %q", got)
	}
	if got := accountKey("42"); got != "portal:account-sessions:42" {
		t.Fatalf("accountKey = %q", got)
	}
}

// newTestStore connects to REDIS_TEST_ADDR; the test is skipped when unset.
func newTestStore(t *testing.T) (*SessionStore, *redis.Client) {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client, err := Connect(context.Background(), Config{Addr: addr})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewSessionStore(client, time.Minute, zerolog.Nop()), client
}

func TestSessionStore_Redis(t *testing.T) {
	s, client := newTestStore(t)
	ctx := context.Background()

	cid := uuid.NewString()
	accountID := uuid.NewString()
	p := domain.Projection{ID: accountID, Username: "pecas", Role: domain.RolePecas, Name: "Peças"}

	if err := s.Establish(ctx, cid, p); err != nil {
		t.Fatalf("Establish: %v", err)
	}
	got, ok, err := s.Current(ctx, cid)
	if err != nil || !ok || got != p {
		t.Fatalf("Current = %+v, %v, %v", got, ok, err)
	}

	p.Role = domain.RoleGerente
	if err := s.Sync(ctx, p); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	got, _, _ = s.Current(ctx, cid)
	if got.Role != domain.RoleGerente {
		t.Fatalf("expected synced role, got %+v", got)
	}
	if ttl := client.TTL(ctx, sessionKey(cid)).Val(); ttl <= 0 {
		t.Fatalf("Sync must keep the TTL, got %s", ttl)
	}

	if err := s.ClearAccount(ctx, accountID); err != nil {
		t.Fatalf("ClearAccount: %v", err)
	}
	if _, ok, _ := s.Current(ctx, cid); ok {
		t.Fatalf("expected session to be gone")
	}

	client.Set(ctx, sessionKey(cid), "{broken", time.Minute)
	if _, ok, err := s.Current(ctx, cid); ok || err != nil {
		t.Fatalf("malformed session: ok=%v err=%v", ok, err)
	}
	if n := client.Exists(ctx, sessionKey(cid)).Val(); n != 0 {
		t.Fatalf("malformed session should have been deleted")
	}
}
