package service

import (
	"context"
	"errors"
	"ethioheritage_backend/internal/util"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// LearnerLocker serialises writers of one learner's progress. Different learners never wait
// on each other. unlock is safe to call more than once.
type LearnerLocker interface {
	Lock(ctx context.Context, userID uint) (unlock func(), err error)
}

type localSlot struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is an in-process keyed semaphore. Slots are dropped when nobody holds or waits on them.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[uint]*localSlot
	wait  time.Duration
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		slots: make(map[uint]*localSlot),
		wait:  wait,
	}
}

func (l *LocalLocker) Lock(ctx context.Context, userID uint) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[userID]
	if !ok {
		slot = &localSlot{ch: make(chan struct{}, 1)}
		l.slots[userID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	select {
	case slot.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.release(userID, slot)
			})
		}, nil
	case <-ctx.Done():
		l.release(userID, slot)
		return nil, lockError(ctx.Err())
	}
}

func (l *LocalLocker) release(userID uint, slot *localSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 && l.slots[userID] == slot {
		delete(l.slots, userID)
	}
}

func lockError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return util.ErrLockTimeout
	}
	return err
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker holds a SET NX PX lease per learner so several instances can share the database.
// The lease expires after ttl if the holder dies.
type RedisLocker struct {
	Redis *redis.Client
	ttl   time.Duration
	wait  time.Duration
	retry time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl, wait time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{Redis: rdb, ttl: ttl, wait: wait, retry: 25 * time.Millisecond}
}

func learnerLockKey(userID uint) string {
	return fmt.Sprintf("lock:learner:%d", userID)
}

func (l *RedisLocker) Lock(ctx context.Context, userID uint) (func(), error) {
	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	key := learnerLockKey(userID)
	token := uuid.NewString()

	for {
		ok, err := l.Redis.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, lockError(ctx.Err())
			}
			return nil, fmt.Errorf("acquire learner lock: %w", err)
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() {
					releaseScript.Run(context.Background(), l.Redis, []string{key}, token)
				})
			}, nil
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lockError(ctx.Err())
		case <-timer.C:
		}
	}
}
