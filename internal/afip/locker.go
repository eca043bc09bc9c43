package afip

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// VoucherLocker serializes the read-last-number, submit-next sequence per
// (ptoVta, cbteTipo). Without it two concurrent submissions can read the
// same last number and race for the same voucher slot.
type VoucherLocker interface {
	// Lock blocks until the slot lock is held or ctx is done. The returned
	// release function must be called on every exit path.
	Lock(ctx context.Context, ptoVta, cbteTipo int) (release func(), err error)
}

type redisVoucherLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewRedisVoucherLocker builds a locker backed by Redis leases, safe across
// multiple server processes.
func NewRedisVoucherLocker(rdb *redis.Client) VoucherLocker {
	return &redisVoucherLocker{
		client: redislock.New(rdb),
		ttl:    30 * time.Second,
	}
}

func (l *redisVoucherLocker) Lock(ctx context.Context, ptoVta, cbteTipo int) (func(), error) {
	key := fmt.Sprintf("voucher-lock:%d:%d", ptoVta, cbteTipo)
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(100 * time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("obtain voucher lock %s: %w", key, err)
	}
	return func() { _ = lock.Release(context.Background()) }, nil
}

type localVoucherLocker struct {
	mu    sync.Mutex
	slots map[string]*sync.Mutex
}

// NewLocalVoucherLocker serializes within a single process only. Used when
// Redis is not configured; correct as long as one server instance runs.
func NewLocalVoucherLocker() VoucherLocker {
	return &localVoucherLocker{slots: make(map[string]*sync.Mutex)}
}

func (l *localVoucherLocker) Lock(ctx context.Context, ptoVta, cbteTipo int) (func(), error) {
	key := fmt.Sprintf("%d:%d", ptoVta, cbteTipo)
	l.mu.Lock()
	m, ok := l.slots[key]
	if !ok {
		m = &sync.Mutex{}
		l.slots[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
