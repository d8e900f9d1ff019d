package dispatcher

import (
	"context"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/wb-go/wbf/zlog"
)

// Lock serializes sweeps. The local variant covers the single-process
// deployment; the Redis variant covers serverless/cron deployments where
// overlapping HTTP-triggered runs can land on different instances.
type Lock interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context)
}

type LocalLock struct {
	mu sync.Mutex
}

func NewLocalLock() *LocalLock { return &LocalLock{} }

func (l *LocalLock) TryLock(_ context.Context) (bool, error) {
	return l.mu.TryLock(), nil
}

func (l *LocalLock) Unlock(_ context.Context) {
	l.mu.Unlock()
}

type redisCmdable interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// RedisLock is a SetNX lease with a TTL safety net: a crashed sweep
// releases the lock after the TTL instead of wedging the schedule.
type RedisLock struct {
	client redisCmdable
	key    string
	ttl    time.Duration
}

func NewRedisLock(client redisCmdable, key string, ttl time.Duration) *RedisLock {
	if key == "" {
		key = "foodreminder:sweep-lock"
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisLock{client: client, key: key, ttl: ttl}
}

func (l *RedisLock) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, "1", l.ttl).Result()
}

func (l *RedisLock) Unlock(ctx context.Context) {
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		zlog.Logger.Error().Err(err).Str("key", l.key).Msg("failed to release sweep lock")
	}
}
