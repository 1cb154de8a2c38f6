package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rezamoss/expense-ledger/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Unique connection name per test; the adapter registry is global.
	connName := t.Name() + "-" + mr.Addr()
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func testConfig(name string) Config {
	return Config{
		Name:              name,
		ConsumerGroup:     "test-group",
		ConsumerName:      "test-consumer",
		MaxRetries:        3,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		BatchSize:         10,
		MaxLen:            1000,
		EnableDLQ:         true,
	}
}

func TestQueue_PublishAndConsume(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	q, err := New(adapter, testConfig("audit:test"))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = q.PublishJSON(ctx, map[string]string{"action": "payment.recorded"}, map[string]string{"type": "audit_event"})
	require.NoError(t, err)

	received := make(chan *Message, 1)
	err = q.Consume(func(ctx context.Context, msg *Message) error {
		received <- msg
		return nil
	})
	require.NoError(t, err)

	select {
	case msg := <-received:
		var data map[string]string
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		assert.Equal(t, "payment.recorded", data["action"])
		assert.Equal(t, "audit_event", msg.Metadata["type"])
		assert.False(t, msg.Timestamp.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("message not received")
	}

	require.NoError(t, q.Stop(time.Second))
}

func TestQueue_RequiresName(t *testing.T) {
	_, adapter := setupTestRedis(t)

	_, err := New(adapter, Config{})
	assert.Error(t, err)
}

func TestQueue_Defaults(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	q, err := New(adapter, Config{Name: "audit:defaults"})
	require.NoError(t, err)
	defer q.Stop(time.Second)

	assert.Equal(t, "default-group", q.config.ConsumerGroup)
	assert.NotEmpty(t, q.config.ConsumerName)
	assert.Equal(t, 3, q.config.MaxRetries)
	assert.Equal(t, 30*time.Second, q.config.VisibilityTimeout)
	assert.Equal(t, int64(10), q.config.BatchSize)
}

func TestQueue_HandlerErrorLeavesMessagePending(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	q, err := New(adapter, testConfig("audit:pending"))
	require.NoError(t, err)
	defer q.Stop(time.Second)

	ctx := context.Background()
	_, err = q.PublishJSON(ctx, map[string]string{"action": "x"}, nil)
	require.NoError(t, err)

	handled := make(chan struct{}, 1)
	err = q.Consume(func(ctx context.Context, msg *Message) error {
		select {
		case handled <- struct{}{}:
		default:
		}
		return assert.AnError
	})
	require.NoError(t, err)

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}

	// The failed message stays pending for a later claim.
	stats, err := q.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.PendingMessages)
}

func TestQueue_ExhaustedMessageGoesToDeadLetter(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	config := testConfig("audit:dlq")
	config.MaxRetries = 2
	q, err := New(adapter, config)
	require.NoError(t, err)
	defer q.Stop(time.Second)

	// A message whose attempts already hit the cap goes straight to the
	// dead letter stream and is acked.
	q.handleMessage(&Message{
		ID:       "1-0",
		Data:     []byte(`{"action":"x"}`),
		Metadata: map[string]string{"type": "audit_event"},
		Attempts: 2,
	})

	dlqLen, err := adapter.XLen("audit:dlq:dlq")
	require.NoError(t, err)
	assert.Equal(t, int64(1), dlqLen)
}

func TestQueue_GetStats(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	q, err := New(adapter, testConfig("audit:stats"))
	require.NoError(t, err)
	defer q.Stop(time.Second)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := q.PublishJSON(ctx, map[string]int{"seq": i}, nil)
		require.NoError(t, err)
	}

	stats, err := q.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalMessages)
	assert.Equal(t, int64(0), stats.PendingMessages)
}

func TestQueue_ConcurrentPublish(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	q, err := New(adapter, testConfig("audit:concurrent"))
	require.NoError(t, err)
	defer q.Stop(time.Second)

	ctx := context.Background()
	const n = 10
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			_, err := q.PublishJSON(ctx, map[string]int{"seq": i}, nil)
			done <- err
		}(i)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-done)
	}

	stats, err := q.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(n), stats.TotalMessages)
}

func TestQueue_Stop(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	q, err := New(adapter, testConfig("audit:stop"))
	require.NoError(t, err)

	err = q.Consume(func(ctx context.Context, msg *Message) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)

	assert.NoError(t, q.Stop(2*time.Second))
}
