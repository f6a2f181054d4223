package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*miniredis.Miniredis, Locker) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewRedisAppointmentLocker(rdb, time.Second)
}

func TestWithAppointmentLock_RunsAndReleases(t *testing.T) {
	mr, locker := newTestLocker(t)

	ran := false
	err := locker.WithAppointmentLock(context.Background(), 12, func(ctx context.Context) error {
		ran = true
		assert.True(t, mr.Exists(AppointmentLockKey(12)))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, "lock:appointment:12", AppointmentLockKey(12))
	assert.False(t, mr.Exists(AppointmentLockKey(12)))
}

func TestWithAppointmentLock_Contention(t *testing.T) {
	mr, locker := newTestLocker(t)
	require.NoError(t, mr.Set(AppointmentLockKey(12), "someone-else"))

	err := locker.WithAppointmentLock(context.Background(), 12, func(ctx context.Context) error {
		t.Fatal("critical section must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	// a foreign token is left alone
	got, _ := mr.Get(AppointmentLockKey(12))
	assert.Equal(t, "someone-else", got)
}

func TestWithAppointmentLock_PropagatesError(t *testing.T) {
	_, locker := newTestLocker(t)
	boom := errors.New("boom")

	err := locker.WithAppointmentLock(context.Background(), 3, func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestNopLocker(t *testing.T) {
	called := false
	err := NopLocker{}.WithAppointmentLock(context.Background(), 1, func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestWithAppointmentLock_KeyExpires(t *testing.T) {
	mr, locker := newTestLocker(t)

	err := locker.WithAppointmentLock(context.Background(), 5, func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.Equal(t, time.Second, mr.TTL(AppointmentLockKey(5)))
		return nil
	})
	require.NoError(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(context.Background(), mr.Addr(), "", "")
	require.NoError(t, err)
	require.NoError(t, rdb.Close())

	mr.Close()
	_, err = NewRedisClient(context.Background(), mr.Addr(), "", "")
	assert.Error(t, err)
}
