package auditor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rezamoss/expense-ledger/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRedisAdapter is an in-memory stand-in for the redis adapter. Stream
// operations are stubbed; idempotency only touches the key-value surface.
type mockRedisAdapter struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockRedisAdapter() *mockRedisAdapter {
	return &mockRedisAdapter{data: make(map[string][]byte)}
}

func (m *mockRedisAdapter) Set(key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockRedisAdapter) SetNX(key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

func (m *mockRedisAdapter) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, redis.NilError
	}
	return v, nil
}

func (m *mockRedisAdapter) Del(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockRedisAdapter) Exist(key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return 1, nil
	}
	return 0, nil
}

func (m *mockRedisAdapter) Client() goredis.UniversalClient { return nil }

func (m *mockRedisAdapter) XAdd(key string, values map[string]interface{}) (string, error) {
	return "", nil
}

func (m *mockRedisAdapter) XReadGroup(group, consumer, key, id string, count int64) ([]redis.StreamMessage, error) {
	return nil, nil
}

func (m *mockRedisAdapter) XAck(key, group string, ids ...string) error { return nil }

func (m *mockRedisAdapter) XGroupCreateMkStream(key, group, start string) error { return nil }

func (m *mockRedisAdapter) XLen(key string) (int64, error) { return 0, nil }

func (m *mockRedisAdapter) XDel(key string, ids ...string) error { return nil }

func (m *mockRedisAdapter) XTrimApprox(key string, maxLen int64) error { return nil }

func (m *mockRedisAdapter) XPending(key, group string) (*goredis.XPending, error) {
	return &goredis.XPending{}, nil
}

func (m *mockRedisAdapter) XPendingExt(key, group string, start, end string, count int64) ([]goredis.XPendingExt, error) {
	return nil, nil
}

func (m *mockRedisAdapter) XClaim(key, group, consumer string, minIdle time.Duration, ids ...string) ([]redis.StreamMessage, error) {
	return nil, nil
}

func newTestIdempotency() (*IdempotencyService, *mockRedisAdapter) {
	mock := newMockRedisAdapter()
	return NewIdempotencyService(mock, DefaultIdempotencyConfig()), mock
}

func TestIdempotency_AcquireProcessingLock(t *testing.T) {
	svc, _ := newTestIdempotency()
	ctx := context.Background()

	pc, err := svc.AcquireProcessingLock(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "evt-1", pc.EventID)
	assert.Equal(t, 0, pc.RetryCount)
	assert.False(t, pc.IsRetry)
}

func TestIdempotency_ConcurrentLockFails(t *testing.T) {
	svc, _ := newTestIdempotency()
	ctx := context.Background()

	_, err := svc.AcquireProcessingLock(ctx, "evt-1")
	require.NoError(t, err)

	// A second consumer holding the same event id is turned away.
	_, err = svc.AcquireProcessingLock(ctx, "evt-1")
	assert.ErrorIs(t, err, ErrLockAcquireFailed)
}

func TestIdempotency_MarkSuccess(t *testing.T) {
	svc, _ := newTestIdempotency()
	ctx := context.Background()

	pc, err := svc.AcquireProcessingLock(ctx, "evt-1")
	require.NoError(t, err)

	require.NoError(t, svc.MarkSuccess(ctx, pc))

	processed, err := svc.IsProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, processed)

	// Redelivery of a processed event short-circuits.
	_, err = svc.AcquireProcessingLock(ctx, "evt-1")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestIdempotency_MarkFailureIncrementsRetries(t *testing.T) {
	svc, _ := newTestIdempotency()
	ctx := context.Background()

	pc, err := svc.AcquireProcessingLock(ctx, "evt-1")
	require.NoError(t, err)

	svc.MarkFailure(ctx, pc, assert.AnError)

	count, err := svc.GetRetryCount(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The lock was released, so the retry can re-acquire.
	pc, err = svc.AcquireProcessingLock(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 1, pc.RetryCount)
	assert.True(t, pc.IsRetry)
}

func TestIdempotency_MaxRetriesExceeded(t *testing.T) {
	svc, _ := newTestIdempotency()
	ctx := context.Background()

	for i := 0; i < svc.config.MaxRetries; i++ {
		pc, err := svc.AcquireProcessingLock(ctx, "evt-1")
		require.NoError(t, err)
		svc.MarkFailure(ctx, pc, assert.AnError)
	}

	_, err := svc.AcquireProcessingLock(ctx, "evt-1")
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
}

func TestIdempotency_ReleaseLock(t *testing.T) {
	svc, _ := newTestIdempotency()
	ctx := context.Background()

	pc, err := svc.AcquireProcessingLock(ctx, "evt-1")
	require.NoError(t, err)

	svc.ReleaseLock(ctx, pc)

	// Releasing twice is harmless.
	svc.ReleaseLock(ctx, pc)
	svc.ReleaseLock(ctx, nil)

	_, err = svc.AcquireProcessingLock(ctx, "evt-1")
	assert.NoError(t, err)
}

func TestIdempotency_SuccessCleansRetryCounter(t *testing.T) {
	svc, _ := newTestIdempotency()
	ctx := context.Background()

	pc, err := svc.AcquireProcessingLock(ctx, "evt-1")
	require.NoError(t, err)
	svc.MarkFailure(ctx, pc, assert.AnError)

	pc, err = svc.AcquireProcessingLock(ctx, "evt-1")
	require.NoError(t, err)
	require.NoError(t, svc.MarkSuccess(ctx, pc))

	count, err := svc.GetRetryCount(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
