package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// ErrLockBusy: задачу уже выполняет другой экземпляр планировщика.
var ErrLockBusy = errors.New("job lock is held by another instance")

const lockPrefix = "scheduler:lock:"

// RedisLocker: распределённая блокировка задач планировщика на redsync.
type RedisLocker struct {
	rs  *redsync.Redsync
	ttl time.Duration
}

// NewRedisLocker создаёт блокировку поверх клиента Redis. ttl ограничивает время,
// на которое блокировка остаётся у упавшего экземпляра.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		rs:  redsync.New(goredis.NewPool(client)),
		ttl: ttl,
	}
}

// Lock пытается один раз взять блокировку задачи. Любая неудача, включая
// недоступность Redis, возвращается как ErrLockBusy с исходной причиной.
func (l *RedisLocker) Lock(ctx context.Context, job string) (func(context.Context) error, error) {
	mutex := l.rs.NewMutex(lockPrefix+job,
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(1),
	)
	if err := mutex.TryLockContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLockBusy, err)
	}
	return func(ctx context.Context) error {
		_, err := mutex.UnlockContext(ctx)
		return err
	}, nil
}
