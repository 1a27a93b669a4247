package locks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	held   map[string]string
	evals  int
	setErr error
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	if _, ok := f.held[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.held[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.evals++
	if f.held[keys[0]] == args[0].(string) {
		delete(f.held, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func newTestLocker(f *fakeRedis) *RedisTripLocker {
	return &RedisTripLocker{rdb: f, TTL: time.Second, Wait: 20 * time.Millisecond, Retry: 5 * time.Millisecond}
}

func TestLockAndRelease(t *testing.T) {
	f := &fakeRedis{held: map[string]string{}}
	l := newTestLocker(f)
	key := TripKey("bus-1", "2026-01-05", "sched-1")
	if key != "trip:bus-1:2026-01-05:sched-1" {
		t.Fatalf("key = %q", key)
	}

	release, err := l.Lock(context.Background(), key)
	if err != nil {
		t.Fatalf("lock error: %v", err)
	}
	if _, err := l.Lock(context.Background(), key); !errors.Is(err, ErrLockBusy) {
		t.Fatalf("second lock err = %v, want ErrLockBusy", err)
	}

	release()
	if _, ok := f.held[key]; ok {
		t.Fatalf("key still held after release")
	}
	if _, err := l.Lock(context.Background(), key); err != nil {
		t.Fatalf("relock error: %v", err)
	}
}

func TestReleaseKeepsForeignToken(t *testing.T) {
	f := &fakeRedis{held: map[string]string{}}
	l := newTestLocker(f)
	release, err := l.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("lock error: %v", err)
	}
	// lock expired and was taken by someone else
	f.held["k"] = "other"
	release()
	if f.held["k"] != "other" {
		t.Fatalf("foreign lock was deleted")
	}
}

func TestLockPropagatesRedisError(t *testing.T) {
	f := &fakeRedis{held: map[string]string{}, setErr: errors.New("down")}
	if _, err := newTestLocker(f).Lock(context.Background(), "k"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNoopLocker(t *testing.T) {
	release, err := NoopLocker{}.Lock(context.Background(), "k")
	if err != nil || release == nil {
		t.Fatalf("noop lock = %v", err)
	}
	release()
}
