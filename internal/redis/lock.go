package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired means another operator is booking the same appointment.
var ErrLockNotAcquired = errors.New("appointment lock not acquired")

// Locker serializes bookings of one appointment so that two operators never
// read the same status and both apply the same transition.
type Locker interface {
	WithAppointmentLock(ctx context.Context, appointmentID int, fn func(ctx context.Context) error) error
}

// AppointmentLockKey is the Redis key held while appointmentID is booked.
func AppointmentLockKey(appointmentID int) string {
	return fmt.Sprintf("lock:appointment:%d", appointmentID)
}

type redisAppointmentLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAppointmentLocker holds a Redis key per appointment for at most
// ttl. The booking callback gets the same deadline.
func NewRedisAppointmentLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisAppointmentLocker{client: client, ttl: ttl}
}

func (l *redisAppointmentLocker) WithAppointmentLock(ctx context.Context, appointmentID int, fn func(ctx context.Context) error) error {
	key := AppointmentLockKey(appointmentID)
	holder := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, holder, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("lock appointment %d: %w", appointmentID, err)
	}
	if !ok {
		return ErrLockNotAcquired
	}
	defer func() {
		_ = l.unlock(context.WithoutCancel(ctx), key, holder)
	}()

	bookingCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()
	return fn(bookingCtx)
}

// unlockIfHolder deletes the key only while it still names this booking, so
// an expired lock taken over by another operator survives.
var unlockIfHolder = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *redisAppointmentLocker) unlock(ctx context.Context, key, holder string) error {
	err := unlockIfHolder.Run(ctx, l.client, []string{key}, holder).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("unlock %s: %w", key, err)
	}
	return nil
}

// NopLocker books without a lock. The interactive menu runs it when
// REDIS_ADDR is unset.
type NopLocker struct{}

func (NopLocker) WithAppointmentLock(ctx context.Context, _ int, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
