package keylock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyLock_AcquireRelease(t *testing.T) {
	kl := New(time.Second)
	ctx := context.Background()

	require.NoError(t, kl.Acquire(ctx, 1))
	kl.Release(1)
	assert.Equal(t, 0, kl.Len())
}

func TestKeyLock_IndependentKeys(t *testing.T) {
	kl := New(time.Second)
	ctx := context.Background()

	require.NoError(t, kl.Acquire(ctx, 1))
	// A different key must not block behind key 1.
	require.NoError(t, kl.Acquire(ctx, 2))
	kl.Release(1)
	kl.Release(2)
}

func TestKeyLock_SameKeySerializes(t *testing.T) {
	kl := New(5 * time.Second)
	ctx := context.Background()

	require.NoError(t, kl.Acquire(ctx, 7))

	entered := make(chan struct{})
	go func() {
		require.NoError(t, kl.Acquire(ctx, 7))
		close(entered)
		kl.Release(7)
	}()

	select {
	case <-entered:
		t.Fatal("second acquirer entered while lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	kl.Release(7)

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("second acquirer never entered after release")
	}
}

func TestKeyLock_AcquireTimeout(t *testing.T) {
	kl := New(30 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, kl.Acquire(ctx, 3))
	err := kl.Acquire(ctx, 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	kl.Release(3)
}

func TestKeyLock_ContextCancel(t *testing.T) {
	kl := New(5 * time.Second)
	require.NoError(t, kl.Acquire(context.Background(), 3))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- kl.Acquire(ctx, 3)
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("acquire did not observe cancellation")
	}
	kl.Release(3)
}

func TestKeyLock_MutualExclusionUnderContention(t *testing.T) {
	kl := New(5 * time.Second)
	ctx := context.Background()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, kl.Acquire(ctx, 42))
			defer kl.Release(42)
			// Non-atomic increment; only safe if the lock excludes.
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, kl.Len())
}
