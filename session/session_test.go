package session_test

import (
	"context"
	"testing"
	"time"

	"cart_ledger/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestAppSessionStore_CreateGetDelete(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	s := session.NewAppSessionStore(rdb, time.Hour)

	if err := s.Create(ctx, "sid-1", 7); err != nil {
		t.Fatalf("Create: %v", err)
	}

	as, err := s.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if as.AccountID != 7 {
		t.Errorf("account = %d, want 7", as.AccountID)
	}
	if as.ExpiresAt-as.IssuedAt != int64(time.Hour/time.Second) {
		t.Errorf("exp - iat = %d", as.ExpiresAt-as.IssuedAt)
	}

	if err := s.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "sid-1"); err != redis.Nil {
		t.Errorf("expected redis.Nil after delete, got %v", err)
	}
}

func TestAppSessionStore_Expires(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	s := session.NewAppSessionStore(rdb, time.Minute)

	if err := s.Create(ctx, "sid", 1); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := s.Get(ctx, "sid"); err != redis.Nil {
		t.Errorf("expected expired session, got %v", err)
	}
}

func TestAppSessionStore_RevokeAllExceptCurrent(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	s := session.NewAppSessionStore(rdb, time.Hour)

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Create(ctx, id, 3); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Create(ctx, "x", 4); err != nil {
		t.Fatal(err)
	}

	if err := s.RevokeAllForAccount(ctx, 3, "b"); err != nil {
		t.Fatalf("RevokeAllForAccount: %v", err)
	}
	for id, alive := range map[string]bool{"a": false, "b": true, "c": false, "x": true} {
		_, err := s.Get(ctx, id)
		if alive && err != nil {
			t.Errorf("session %s should survive: %v", id, err)
		}
		if !alive && err != redis.Nil {
			t.Errorf("session %s should be revoked, got %v", id, err)
		}
	}

	if err := s.RevokeAllForAccount(ctx, 3, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "b"); err != redis.Nil {
		t.Errorf("session b should be revoked, got %v", err)
	}
}

func TestLoginLimiter(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	l := session.NewLoginLimiter(rdb, 3, 10*time.Minute)

	for i := 1; i <= 3; i++ {
		locked, err := l.Locked(ctx, "T1")
		if err != nil {
			t.Fatal(err)
		}
		if locked {
			t.Fatalf("locked after %d failures", i-1)
		}
		n, err := l.Fail(ctx, "t1")
		if err != nil {
			t.Fatal(err)
		}
		if n != int64(i) {
			t.Errorf("count = %d, want %d", n, i)
		}
	}
	if locked, _ := l.Locked(ctx, "t1"); !locked {
		t.Fatal("expected lock after 3 failures")
	}

	mr.FastForward(11 * time.Minute)
	if locked, _ := l.Locked(ctx, "t1"); locked {
		t.Error("lock should expire with the window")
	}

	_, _ = l.Fail(ctx, "t1")
	if err := l.Reset(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("app:login_fail:t1") {
		t.Error("reset left the counter behind")
	}
}

func TestLoginLimiter_SharesCounterAcrossCase(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	l := session.NewLoginLimiter(rdb, 2, time.Minute)

	_, _ = l.Fail(ctx, "Ana")
	_, _ = l.Fail(ctx, " ana")
	if locked, _ := l.Locked(ctx, "ANA"); !locked {
		t.Error("handles differing only in case must share one counter")
	}
}

func TestLoginLimiter_Disabled(t *testing.T) {
	_, rdb := newRedis(t)
	l := session.NewLoginLimiter(rdb, 0, time.Minute)

	for i := 0; i < 10; i++ {
		_, _ = l.Fail(context.Background(), "x")
	}
	if locked, err := l.Locked(context.Background(), "x"); err != nil || locked {
		t.Errorf("disabled limiter locked = %v, err = %v", locked, err)
	}
}
