package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unifarm/ledger/internal/domain"
)

// Lua scripts compare the stored token before touching the key, so a lock
// that expired and was re-acquired by another instance is never renewed or
// released by the old holder.
var (
	renewScript = redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("PEXPIRE", KEYS[1], ARGV[2])
		end
		return 0
	`)
	releaseScript = redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		end
		return 0
	`)
)

// SchedulerLock implements usecase.SchedulerLock with a leased Redis key.
// The lease expires on its own if the holder crashes mid-tick.
type SchedulerLock struct {
	client *redis.Client
	key    string
	token  string
	lease  time.Duration
}

// NewSchedulerLock creates a new SchedulerLock. Each instance carries its
// own random token identifying its ownership of the lease.
func NewSchedulerLock(client *redis.Client, key string, lease time.Duration) *SchedulerLock {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)

	return &SchedulerLock{
		client: client,
		key:    "lock:" + key,
		token:  hex.EncodeToString(buf),
		lease:  lease,
	}
}

// Acquire claims the lease. Returns false without error when another
// instance holds it; the caller skips this tick silently.
func (l *SchedulerLock) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.token, l.lease).Result()
}

// Renew extends the lease mid-tick. Fails with ErrSchedulerLockHeld when
// the lease expired and someone else took over.
func (l *SchedulerLock) Renew(ctx context.Context) error {
	ok, err := renewScript.Run(ctx, l.client, []string{l.key}, l.token, l.lease.Milliseconds()).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if ok == 0 {
		return domain.ErrSchedulerLockHeld
	}

	return nil
}

// Release drops the lease if this instance still holds it.
func (l *SchedulerLock) Release(ctx context.Context) error {
	_, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	return nil
}
