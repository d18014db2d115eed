package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"filevault-api/config"
)

// releaseScript deletes the key only while it still carries our token, so an expired lock
// re-acquired by another replica is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct {
	rdb    redis.Cmdable
	logger *zap.Logger
}

func NewClient(ctx context.Context, logger *zap.Logger, addr string, cfg config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("redis connected successfully", zap.String("addr", addr))

	return rdb, nil
}

func NewLocker(rdb redis.Cmdable, logger *zap.Logger) *Locker {
	return &Locker{rdb: rdb, logger: logger}
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Warn("lock release failed", zap.String("key", key), zap.Error(err))
		}
	}

	return release, true, nil
}

// LocalLocker is used when redis is not configured: a single replica never contends.
type LocalLocker struct{}

func (LocalLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}
