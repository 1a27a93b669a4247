package locks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockBusy means another request holds the trip lock.
var ErrLockBusy = errors.New("trip is locked by another request")

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisTripLocker serializes payment confirmation per trip across instances.
type RedisTripLocker struct {
	rdb   redisClient
	TTL   time.Duration
	Wait  time.Duration
	Retry time.Duration
}

func NewRedisTripLocker(rdb *redis.Client) *RedisTripLocker {
	return &RedisTripLocker{rdb: rdb, TTL: 10 * time.Second, Wait: 3 * time.Second, Retry: 50 * time.Millisecond}
}

func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// TripKey names the lock for one run of a bus: trip:<busId>:<travelDate>:<scheduleId>.
func TripKey(busID, travelDate, scheduleID string) string {
	return fmt.Sprintf("trip:%s:%s:%s", busID, travelDate, scheduleID)
}

// Lock blocks up to Wait for the key. The returned release func is safe to call once.
func (l *RedisTripLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.Wait)

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrLockBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.Retry):
		}
	}
}

// release only deletes the key when it still carries our token.
func (l *RedisTripLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.rdb.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("[LOCKS] release %s failed: %v", key, err)
	}
}

// NoopLocker is used when Redis is not configured.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }
