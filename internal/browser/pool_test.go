package browser

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeInstance records how many workers hold it at once.
type fakeInstance struct {
	holders atomic.Int32
	maxSeen atomic.Int32
	closed  atomic.Bool
}

func (f *fakeInstance) NewSession(SessionOptions) (Session, error) { return nil, nil }

func (f *fakeInstance) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *fakeInstance) hold() {
	n := f.holders.Add(1)
	for {
		max := f.maxSeen.Load()
		if n <= max || f.maxSeen.CompareAndSwap(max, n) {
			break
		}
	}
}

func (f *fakeInstance) release() {
	f.holders.Add(-1)
}

func TestPoolNeverSharesAnInstance(t *testing.T) {
	instances := []Instance{&fakeInstance{}, &fakeInstance{}}
	pool, err := NewPool(instances, nil, nil)
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inst, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			fake := inst.(*fakeInstance)
			fake.hold()
			time.Sleep(2 * time.Millisecond)
			fake.release()
			pool.Release(inst)
		}()
	}
	wg.Wait()

	for _, inst := range instances {
		fake := inst.(*fakeInstance)
		require.LessOrEqual(t, fake.maxSeen.Load(), int32(1),
			"an instance was held by two workers at once")
		require.Zero(t, fake.holders.Load())
	}
}

func TestPoolAcquireHonorsContext(t *testing.T) {
	inst := &fakeInstance{}
	pool, err := NewPool([]Instance{inst}, nil, nil)
	require.NoError(t, err)

	held, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	pool.Release(held)
	got, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	require.Same(t, inst, got)
	pool.Release(got)
}

func TestPoolCloseTearsDownEveryInstance(t *testing.T) {
	instances := []Instance{&fakeInstance{}, &fakeInstance{}, &fakeInstance{}}
	stopped := false
	pool, err := NewPool(instances, func() error { stopped = true; return nil }, nil)
	require.NoError(t, err)

	pool.Close()
	require.True(t, stopped)
	for _, inst := range instances {
		require.True(t, inst.(*fakeInstance).closed.Load())
	}
}

func TestNewPoolRejectsEmpty(t *testing.T) {
	_, err := NewPool(nil, nil, nil)
	require.Error(t, err)
}
