// Package lock provides short-lived named locks that keep two payment
// attempts for the same booking from running at once.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rentshare-backend/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLocked = errors.New("lock is held")

// Unlock releases a lock obtained from a Locker.
type Unlock func(ctx context.Context) error

type Locker interface {
	// TryLock acquires key without waiting. It returns ErrLocked when
	// another holder has it.
	TryLock(ctx context.Context, key string) (Unlock, error)
}

// releaseScript deletes the key only if it still holds our token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

type RedisLocker struct {
	client   redis.Cmdable
	prefix   string
	ttl      time.Duration
	newToken func() string
}

func NewRedisLocker(client redis.Cmdable, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl, newToken: uuid.NewString}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (Unlock, error) {
	full := l.prefix + key
	token := l.newToken()

	logger.ExternalServiceCall("redis", "SetNX", "key", full)
	ok, err := l.client.SetNX(ctx, full, token, l.ttl).Result()
	logger.ExternalServiceResult("redis", "SetNX", err, "key", full, "acquired", ok)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", full, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func(ctx context.Context) error {
		if err := l.client.Eval(ctx, releaseScript, []string{full}, token).Err(); err != nil {
			logger.ExternalServiceResult("redis", "Eval", err, "key", full)
			return fmt.Errorf("failed to release lock %s: %w", full, err)
		}
		return nil
	}, nil
}

// LocalLocker is the in-process Locker used when redis is not configured.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) TryLock(_ context.Context, key string) (Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, ErrLocked
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
