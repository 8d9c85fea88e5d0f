package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *TokenStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewTokenStore(client, "test", zerolog.Nop())
}

func TestTokenStore_SetWritesBothKeysWithTTL(t *testing.T) {
	mr, s := newTestStore(t)
	ctx := context.Background()

	user := &domain.User{Username: "alice", Email: "alice@example.com", Role: domain.RoleHR, Active: true}
	if err := s.Set(ctx, "tok-1", user, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if got, _ := mr.Get("test:token"); got != "tok-1" {
		t.Fatalf("expected token key, got %q", got)
	}
	if !mr.Exists("test:user") {
		t.Fatalf("expected user key")
	}
	if ttl := mr.TTL("test:token"); ttl != time.Hour {
		t.Fatalf("expected token ttl 1h, got %v", ttl)
	}
	if ttl := mr.TTL("test:user"); ttl != time.Hour {
		t.Fatalf("expected user ttl 1h, got %v", ttl)
	}

	got := s.Get(ctx)
	if !got.Complete() || got.User.Username != "alice" || got.User.Role != domain.RoleHR {
		t.Fatalf("unexpected pair: %+v", got)
	}
}

func TestTokenStore_ExpiryRemovesPair(t *testing.T) {
	mr, s := newTestStore(t)
	ctx := context.Background()

	_ = s.Set(ctx, "tok-1", &domain.User{Username: "alice"}, time.Hour)
	mr.FastForward(time.Hour + time.Second)

	if got := s.Get(ctx); !got.Empty() {
		t.Fatalf("expected empty pair after TTL, got %+v", got)
	}
}

func TestTokenStore_Clear(t *testing.T) {
	mr, s := newTestStore(t)
	ctx := context.Background()

	_ = s.Set(ctx, "tok-1", &domain.User{Username: "alice"}, time.Hour)
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if mr.Exists("test:token") || mr.Exists("test:user") {
		t.Fatalf("expected both keys deleted")
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestTokenStore_PartialStateIsReported(t *testing.T) {
	mr, s := newTestStore(t)

	_ = mr.Set("test:token", "orphan")
	got := s.Get(context.Background())
	if got.Token != "orphan" || got.User != nil {
		t.Fatalf("expected token-only pair, got %+v", got)
	}
	if got.Complete() {
		t.Fatalf("partial pair must not be complete")
	}
}

func TestTokenStore_UndecodableUserIsAbsent(t *testing.T) {
	mr, s := newTestStore(t)

	_ = mr.Set("test:token", "tok")
	_ = mr.Set("test:user", "{not json")
	got := s.Get(context.Background())
	if got.User != nil {
		t.Fatalf("expected undecodable user to be dropped, got %+v", got.User)
	}
}

func TestTokenStore_SetUserKeepsTokenAndTTL(t *testing.T) {
	mr, s := newTestStore(t)
	ctx := context.Background()

	_ = s.Set(ctx, "tok-1", &domain.User{Username: "alice", Email: "a@example.com"}, time.Hour)
	mr.FastForward(10 * time.Minute)

	if err := s.SetUser(ctx, &domain.User{Username: "alice", Email: "new@example.com"}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}

	got := s.Get(ctx)
	if got.Token != "tok-1" || got.User.Email != "new@example.com" {
		t.Fatalf("unexpected pair: %+v", got)
	}
	if ttl := mr.TTL("test:user"); ttl != 50*time.Minute {
		t.Fatalf("expected remaining ttl 50m, got %v", ttl)
	}
}

func TestTokenStore_SetUserWithoutToken(t *testing.T) {
	mr, s := newTestStore(t)

	err := s.SetUser(context.Background(), &domain.User{Username: "alice"})
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if mr.Exists("test:user") {
		t.Fatalf("user must not be written without a token")
	}
}

func TestTokenStore_RedisDownReadsAsAbsent(t *testing.T) {
	mr, s := newTestStore(t)
	ctx := context.Background()

	_ = s.Set(ctx, "tok-1", &domain.User{Username: "alice"}, time.Hour)
	mr.Close()

	if got := s.Get(ctx); !got.Empty() {
		t.Fatalf("expected empty pair when redis is down, got %+v", got)
	}
	if err := s.Set(ctx, "tok-2", &domain.User{Username: "bob"}, time.Hour); err == nil {
		t.Fatalf("expected Set to fail when redis is down")
	}
}

func TestTokenStore_ConcurrentSetsNeverMixPairs(t *testing.T) {
	_, s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("user-%d", i)
			_ = s.Set(ctx, "token-"+name, &domain.User{Username: name}, time.Hour)
		}(i)
	}
	wg.Wait()

	got := s.Get(ctx)
	if !got.Complete() {
		t.Fatalf("expected a complete pair, got %+v", got)
	}
	if got.Token != "token-"+got.User.Username {
		t.Fatalf("token %q paired with user %q", got.Token, got.User.Username)
	}
}
