package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabir-fx/abhiraksha/constants"
)

func TestWorkerPool_ProcessesAllJobsBeforeShutdownReturns(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]constants.DocumentType{}
	pool := NewWorkerPool(func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen[job.Path] = job.Document
		return nil
	}, WithWorkers(3), WithQueueSize(10))

	require.NoError(t, pool.Enqueue(context.Background(), NewJob("a.pdf", constants.Bill)))
	require.NoError(t, pool.Enqueue(context.Background(), NewJob("b.pdf", constants.Insurance)))
	require.NoError(t, pool.Enqueue(context.Background(), Job{Path: "c.txt", Document: constants.Discharge}))

	pool.Shutdown(context.Background())

	assert.Equal(t, map[string]constants.DocumentType{
		"a.pdf": constants.Bill,
		"b.pdf": constants.Insurance,
		"c.txt": constants.Discharge,
	}, seen)
}

func TestWorkerPool_FillsMissingJobMetadata(t *testing.T) {
	got := make(chan Job, 1)
	pool := NewWorkerPool(func(_ context.Context, job Job) error {
		got <- job
		return nil
	})
	require.NoError(t, pool.Enqueue(context.Background(), Job{Path: "x.pdf"}))
	pool.Shutdown(context.Background())

	job := <-got
	assert.NotEmpty(t, job.TraceID)
	assert.False(t, job.SubmittedAt.IsZero())
}

func TestWorkerPool_FullQueue(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	pool := NewWorkerPool(func(context.Context, Job) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}, WithWorkers(1), WithQueueSize(1))

	require.NoError(t, pool.Enqueue(context.Background(), NewJob("first", constants.Bill)))
	<-started
	require.NoError(t, pool.Enqueue(context.Background(), NewJob("second", constants.Bill)))
	err := pool.Enqueue(context.Background(), NewJob("third", constants.Bill))
	assert.ErrorIs(t, err, ErrQueueFull)

	close(release)
	pool.Shutdown(context.Background())
}

func TestWorkerPool_EnqueueAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(func(context.Context, Job) error { return nil })
	pool.Shutdown(context.Background())
	pool.Shutdown(context.Background())

	err := pool.Enqueue(context.Background(), NewJob("late.pdf", constants.Bill))
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestWorkerPool_CancelledContextRejected(t *testing.T) {
	pool := NewWorkerPool(func(context.Context, Job) error { return nil })
	defer pool.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pool.Enqueue(ctx, NewJob("x.pdf", constants.Bill)), context.Canceled)
}

func TestWorkerPool_HandlerErrorsAndPanicsDoNotStopWorkers(t *testing.T) {
	var done atomic.Int32
	pool := NewWorkerPool(func(_ context.Context, job Job) error {
		defer done.Add(1)
		switch job.Path {
		case "boom":
			panic("handler exploded")
		case "fail":
			return errors.New("failed")
		}
		return nil
	}, WithWorkers(1), WithQueueSize(4))

	for _, p := range []string{"boom", "fail", "ok"} {
		require.NoError(t, pool.Enqueue(context.Background(), NewJob(p, constants.Bill)))
	}
	pool.Shutdown(context.Background())
	assert.Equal(t, int32(3), done.Load())
}

func TestWorkerPool_ShutdownTimeoutCancelsHandlers(t *testing.T) {
	pool := NewWorkerPool(func(ctx context.Context, _ Job) error {
		<-ctx.Done()
		return ctx.Err()
	}, WithWorkers(1))
	require.NoError(t, pool.Enqueue(context.Background(), NewJob("slow.pdf", constants.Bill)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	finished := make(chan struct{})
	go func() {
		pool.Shutdown(ctx)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not return after its context expired")
	}
}

func TestWorkerPool_DepthObserver(t *testing.T) {
	var mu sync.Mutex
	var depths []int
	pool := NewWorkerPool(func(context.Context, Job) error { return nil },
		WithDepthObserver(func(n int) {
			mu.Lock()
			depths = append(depths, n)
			mu.Unlock()
		}))
	require.NoError(t, pool.Enqueue(context.Background(), NewJob("a.pdf", constants.Bill)))
	pool.Shutdown(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, len(depths), 2)
	assert.Equal(t, 0, depths[len(depths)-1])
}

func TestWorkerPool_ProcessTimeout(t *testing.T) {
	got := make(chan error, 1)
	pool := NewWorkerPool(func(ctx context.Context, _ Job) error {
		<-ctx.Done()
		got <- ctx.Err()
		return ctx.Err()
	}, WithProcessTimeout(10*time.Millisecond))
	require.NoError(t, pool.Enqueue(context.Background(), NewJob("slow.pdf", constants.Bill)))
	pool.Shutdown(context.Background())

	assert.ErrorIs(t, <-got, context.DeadlineExceeded)
}
