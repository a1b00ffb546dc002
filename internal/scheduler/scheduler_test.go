package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zhairuihao/anchor-src-gen/internal/fetch"
	"github.com/zhairuihao/anchor-src-gen/internal/testutil"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// script builds a job whose fetch returns the queued errors in order and
// then succeeds.
func script(name string, errs ...error) Job {
	var mu sync.Mutex
	return Job{
		Name: name,
		Fetch: func(context.Context) ([]byte, error) {
			mu.Lock()
			defer mu.Unlock()
			if len(errs) > 0 {
				err := errs[0]
				errs = errs[1:]
				return nil, err
			}
			return []byte(name), nil
		},
		Process: func(context.Context, []byte) error { return nil },
	}
}

func names(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestPool_SpacesCalls(t *testing.T) {
	clock := testutil.NewFakeClock(epoch)
	p := New(Config{Workers: 1, BaseDelay: 100 * time.Millisecond, Clock: clock, Logger: zaptest.NewLogger(t)})

	rep, err := p.Run(context.Background(), []Job{script("a"), script("b"), script("c")})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, names(rep.Done))
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, clock.Sleeps())
	assert.NoError(t, rep.Err())
}

func TestPool_RequeueWidensDelay(t *testing.T) {
	clock := testutil.NewFakeClock(epoch)
	p := New(Config{Workers: 1, BaseDelay: 100 * time.Millisecond, Clock: clock})

	rep, err := p.Run(context.Background(), []Job{
		script("a"),
		script("b", errors.New("timeout")),
		script("c"),
	})
	require.NoError(t, err)

	// b goes to the back of the queue; the error doubles the delay before c.
	assert.Equal(t, []string{"a", "c", "b"}, names(rep.Done))
	assert.Equal(t, 2, rep.Done[2].Attempts)
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		100 * time.Millisecond,
	}, clock.Sleeps())
	assert.Zero(t, p.gate.Errors(), "successes narrow the delay again")
}

func TestPool_ProcessingTimeCounts(t *testing.T) {
	clock := testutil.NewFakeClock(epoch)
	p := New(Config{Workers: 1, BaseDelay: 100 * time.Millisecond, Clock: clock})

	slow := script("slow")
	slow.Process = func(context.Context, []byte) error {
		clock.Advance(60 * time.Millisecond)
		return nil
	}
	_, err := p.Run(context.Background(), []Job{slow, script("next")})
	require.NoError(t, err)

	// Watermark is the call time plus half of the 60ms spent processing.
	assert.Equal(t, []time.Duration{70 * time.Millisecond}, clock.Sleeps())
}

func TestPool_RetriesExceeded(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	boom := errors.New("rpc unavailable")
	p := New(Config{Workers: 1, MaxRetries: 2, Clock: testutil.NewFakeClock(epoch), Logger: zap.New(core)})

	rep, err := p.Run(context.Background(), []Job{script("flaky", boom, boom, boom, boom)})
	require.NoError(t, err)

	require.Len(t, rep.Skipped, 1)
	skipped := rep.Skipped[0]
	assert.Equal(t, 3, skipped.Attempts)
	assert.True(t, IsRetriesExceededError(skipped.Err))
	assert.ErrorIs(t, skipped.Err, boom)
	assert.Empty(t, rep.Done)
	assert.NoError(t, rep.Err(), "skipping is not a failure")
	assert.Equal(t, 1, logs.FilterMessage("retries exhausted, skipping").Len())
}

func TestPool_NoRetries(t *testing.T) {
	p := New(Config{Workers: 1, MaxRetries: -1, Clock: testutil.NewFakeClock(epoch)})

	rep, err := p.Run(context.Background(), []Job{script("once", errors.New("x"))})
	require.NoError(t, err)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, 1, rep.Skipped[0].Attempts)
}

func TestPool_NotFoundSkips(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := New(Config{Workers: 2, Clock: testutil.NewFakeClock(epoch), Logger: zap.New(core)})

	missing := fmt.Errorf("%w: program X", fetch.ErrNotFound)
	rep, err := p.Run(context.Background(), []Job{script("gone", missing)})
	require.NoError(t, err)

	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, 1, rep.Skipped[0].Attempts, "not found is never retried")
	assert.ErrorIs(t, rep.Skipped[0].Err, fetch.ErrNotFound)

	entries := logs.FilterMessage("no idl found, skipping").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gone", entries[0].ContextMap()["task"])
}

func TestPool_ProcessFailure(t *testing.T) {
	p := New(Config{Workers: 1, Clock: testutil.NewFakeClock(epoch)})

	bad := script("bad")
	var calls int
	bad.Process = func(context.Context, []byte) error {
		calls++
		return errors.New("unsupported type")
	}
	rep, err := p.Run(context.Background(), []Job{bad, script("good")})
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "processing is not retried")
	assert.Equal(t, []string{"bad"}, names(rep.Failed))
	assert.Equal(t, []string{"good"}, names(rep.Done))
	assert.EqualError(t, rep.Err(), "unsupported type")
}

func TestPool_PermitsBoundConcurrency(t *testing.T) {
	var inflight, peak atomic.Int32
	var done atomic.Int32

	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = Job{
			Name: fmt.Sprintf("p%d", i),
			Fetch: func(context.Context) ([]byte, error) {
				n := inflight.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				inflight.Add(-1)
				return nil, nil
			},
			Process: func(context.Context, []byte) error {
				done.Add(1)
				return nil
			},
		}
	}

	p := New(Config{Workers: 6, Permits: 2})
	rep, err := p.Run(context.Background(), jobs)
	require.NoError(t, err)

	assert.Len(t, rep.Done, 20)
	assert.Equal(t, int32(20), done.Load())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPool_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := New(Config{Workers: 2}).Run(ctx, []Job{script("a"), script("b")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rep.Done)
}

func TestPool_Empty(t *testing.T) {
	rep, err := New(Config{}).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rep.Done)
}

func TestThrottle(t *testing.T) {
	g := &throttle{base: 10 * time.Millisecond}
	assert.Zero(t, g.delay(epoch), "no call yet")

	g.mark(epoch)
	g.mark(epoch.Add(-time.Second))
	assert.Equal(t, 10*time.Millisecond, g.delay(epoch), "watermark never moves back")

	for i := 0; i < 150; i++ {
		g.failure()
	}
	assert.Equal(t, MaxErrorCount, g.Errors())
	assert.Equal(t, 101*10*time.Millisecond, g.delay(epoch))

	g.success()
	assert.Equal(t, MaxErrorCount-1, g.Errors())

	g = &throttle{}
	g.success()
	assert.Zero(t, g.Errors(), "counter stays at zero")
}

func TestTaskQueue_FIFO(t *testing.T) {
	q := newTaskQueue(0)
	for _, n := range []string{"A", "B", "C"} {
		q.Enqueue(&task{job: Job{Name: n}})
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, got.job.Name)
	}
	_, ok := q.TryDequeue()
	assert.False(t, ok)

	select {
	case <-q.Wait():
	default:
		t.Fatal("enqueue should leave a signal")
	}
}

func TestRetriesExceededError(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("batch: %w", &RetriesExceededError{Task: "escrow", Attempts: 4, Err: base})

	assert.True(t, IsRetriesExceededError(err))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "task escrow failed after 4 attempts: boom")
	assert.False(t, IsRetriesExceededError(base))
}
