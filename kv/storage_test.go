package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStorageTest(t *testing.T) (*RedisStorage, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStorage(rdb, "sf"), mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestRedisStorageRoundTrip(t *testing.T) {
	store, mr, done := newRedisStorageTest(t)
	defer done()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "session.token"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := store.SetMany(ctx, map[string]string{
		"session.token": "tok",
		"session.role":  "USER",
	}); err != nil {
		t.Fatalf("set many: %v", err)
	}
	if got, err := mr.Get("sf:session.token"); err != nil || got != "tok" {
		t.Fatalf("expected prefixed key in redis, got %q err=%v", got, err)
	}

	v, ok, err := store.Get(ctx, "session.role")
	if err != nil || !ok || v != "USER" {
		t.Fatalf("get role: v=%q ok=%v err=%v", v, ok, err)
	}

	if err := store.Delete(ctx, "session.token", "session.role", "missing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("sf:session.token") || mr.Exists("sf:session.role") {
		t.Fatal("expected keys deleted")
	}
}

func TestRedisStorageUnavailable(t *testing.T) {
	store, mr, done := newRedisStorageTest(t)
	defer done()
	mr.Close()

	err := Set(context.Background(), store, "cart.entries", "[]")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, _, err := store.Get(context.Background(), "cart.entries"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on get, got %v", err)
	}
}

func TestMemoryStorageQuotaIsAllOrNothing(t *testing.T) {
	m := NewMemoryStorage(20)
	ctx := context.Background()

	if err := Set(ctx, m, "a", "12345"); err != nil {
		t.Fatalf("first set: %v", err)
	}
	err := m.SetMany(ctx, map[string]string{
		"b": "1234",
		"c": "123456789012",
	})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if _, ok, _ := m.Get(ctx, "b"); ok {
		t.Fatal("partial write leaked key b")
	}

	// Overwriting shrinks usage and must be accepted.
	if err := Set(ctx, m, "a", "1"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := Set(ctx, m, "b", "1234567890"); err != nil {
		t.Fatalf("set after shrink: %v", err)
	}
}

func TestMemoryStorageFailureInjection(t *testing.T) {
	m := NewMemoryStorage(0)
	ctx := context.Background()
	boom := errors.New("boom")

	m.FailWrites(boom)
	if err := Set(ctx, m, "k", "v"); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if err := m.Delete(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("expected injected delete error, got %v", err)
	}
	m.FailWrites(nil)

	m.Put("k", "v")
	m.FailReads(boom)
	if _, _, err := m.Get(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("expected injected read error, got %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 key, got %d", m.Len())
	}
}
