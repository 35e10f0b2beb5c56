package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLockTimeout is returned when a slot lock cannot be acquired before the
// context is done.
var ErrLockTimeout = errors.New("slot lock timeout")

// SlotLocker serializes commits to the same slot key.
type SlotLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ==================== IN-PROCESS ====================

type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]*slotMutex
}

type slotMutex struct {
	sem  chan struct{}
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]*slotMutex)}
}

func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.slots[key]
	if !ok {
		m = &slotMutex{sem: make(chan struct{}, 1)}
		l.slots[key] = m
	}
	m.refs++
	l.mu.Unlock()

	select {
	case m.sem <- struct{}{}:
		return func() {
			<-m.sem
			l.release(key, m)
		}, nil
	case <-ctx.Done():
		l.release(key, m)
		return nil, fmt.Errorf("lock %s: %w", key, ErrLockTimeout)
	}
}

func (l *MemoryLocker) release(key string, m *slotMutex) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m.refs--
	if m.refs == 0 {
		delete(l.slots, key)
	}
}

// ==================== REDIS ====================

// Deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

type RedisLocker struct {
	rdb        *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
	log        *zap.Logger
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisLocker{
		rdb:        rdb,
		ttl:        ttl,
		retryDelay: 20 * time.Millisecond,
		log:        log.With(zap.String("component", "redis_locker")),
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.ttl)
		defer cancel()
	}

	redisKey := fmt.Sprintf(KeySlotLock, key)
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return func() { l.unlock(redisKey, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock %s: %w", key, ErrLockTimeout)
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *RedisLocker) unlock(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.rdb, []string{redisKey}, token).Err(); err != nil {
		l.log.Warn("Failed to release slot lock", zap.String("key", redisKey), zap.Error(err))
	}
}
