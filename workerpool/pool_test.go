package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPoolRunsSubmittedJobs(t *testing.T) {
	pool := New(2, 10, zap.NewNop())

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := pool.Submit(context.Background(), func(context.Context) {
			ran.Add(1)
			wg.Done()
		})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.Equal(t, int32(5), ran.Load())
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPoolBoundsConcurrency(t *testing.T) {
	pool := New(2, 10, zap.NewNop())

	var current, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		require.NoError(t, pool.Submit(context.Background(), func(context.Context) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
			wg.Done()
		}))
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestSubmitBackpressure(t *testing.T) {
	pool := New(1, 1, zap.NewNop())

	release := make(chan struct{})
	// occupy the single worker, then fill the single queue slot
	require.NoError(t, pool.Submit(context.Background(), func(context.Context) { <-release }))
	require.NoError(t, pool.Submit(context.Background(), func(context.Context) {}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func(context.Context) {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestShutdownDrainsQueuedJobs(t *testing.T) {
	pool := New(1, 10, zap.NewNop())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, pool.Submit(context.Background(), func(context.Context) {
			time.Sleep(time.Millisecond)
			ran.Add(1)
		}))
	}

	require.NoError(t, pool.Shutdown(context.Background()))
	assert.Equal(t, int32(5), ran.Load())

	err := pool.Submit(context.Background(), func(context.Context) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPoolSurvivesPanickingJob(t *testing.T) {
	pool := New(1, 2, zap.NewNop())

	require.NoError(t, pool.Submit(context.Background(), func(context.Context) {
		panic("job blew up")
	}))

	done := make(chan struct{})
	require.NoError(t, pool.Submit(context.Background(), func(context.Context) {
		close(done)
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after panic")
	}
	require.NoError(t, pool.Shutdown(context.Background()))
}
