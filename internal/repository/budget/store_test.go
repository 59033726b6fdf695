package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/umami-labs/recipedex/internal/db"
)

type mockKV struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	incrByFn func(ctx context.Context, key string, val int64) error
	expireFn func(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKV) IncrBy(ctx context.Context, key string, val int64) error {
	if m.incrByFn != nil {
		return m.incrByFn(ctx, key, val)
	}
	return nil
}

func (m *mockKV) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl, nx)
	}
	return nil
}

func TestIncrBy_SetsDailyTTL(t *testing.T) {
	ms := &mockKV{}
	s := New(ms, 48*time.Hour, 62*24*time.Hour)

	var gotTTL time.Duration
	var gotNX bool
	ms.expireFn = func(_ context.Context, _ string, ttl time.Duration, nx bool) error {
		gotTTL = ttl
		gotNX = nx
		return nil
	}

	err := s.IncrBy(context.Background(), "recipedex:budget:openai:daily:2026-08-22", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != 48*time.Hour {
		t.Errorf("expected daily TTL 48h, got %v", gotTTL)
	}
	if !gotNX {
		t.Error("expected EXPIRE with NX so repeat increments keep the original expiry")
	}
}

func TestIncrBy_SetsMonthlyTTL(t *testing.T) {
	ms := &mockKV{}
	s := New(ms, 48*time.Hour, 62*24*time.Hour)

	var gotTTL time.Duration
	ms.expireFn = func(_ context.Context, _ string, ttl time.Duration, _ bool) error {
		gotTTL = ttl
		return nil
	}

	err := s.IncrBy(context.Background(), "recipedex:budget:openai:monthly:2026-08", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != 62*24*time.Hour {
		t.Errorf("expected monthly TTL 62d, got %v", gotTTL)
	}
}

func TestIncrBy_IncrError(t *testing.T) {
	ms := &mockKV{}
	s := New(ms, time.Hour, time.Hour)

	ms.incrByFn = func(_ context.Context, _ string, _ int64) error {
		return errors.New("READONLY")
	}
	ms.expireFn = func(_ context.Context, _ string, _ time.Duration, _ bool) error {
		t.Fatal("EXPIRE should not run after INCRBY failure")
		return nil
	}

	if err := s.IncrBy(context.Background(), "k:daily:x", 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestGet_MissingKeyIsZero(t *testing.T) {
	ms := &mockKV{}
	s := New(ms, time.Hour, time.Hour)

	val, err := s.Get(context.Background(), "recipedex:budget:openai:daily:2026-08-22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 0 {
		t.Fatalf("expected 0 for missing key, got %d", val)
	}
}

func TestGet_ParsesValue(t *testing.T) {
	ms := &mockKV{}
	s := New(ms, time.Hour, time.Hour)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("12345"), nil
	}

	val, err := s.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 12345 {
		t.Fatalf("expected 12345, got %d", val)
	}
}

func TestGet_ParseError(t *testing.T) {
	ms := &mockKV{}
	s := New(ms, time.Hour, time.Hour)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("not-a-number"), nil
	}

	if _, err := s.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected parse error")
	}
}
