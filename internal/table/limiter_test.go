package table

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLimiterAcquireRelease(t *testing.T) {
	l := NewLoadLimiter(2, time.Second)
	ctx := context.Background()

	assert.Equal(t, 2, l.Available())

	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))
	assert.Equal(t, 2, l.Active())
	assert.Equal(t, 0, l.Available())

	l.Release()
	assert.Equal(t, 1, l.Active())
	assert.Equal(t, 1, l.Available())

	l.Release()
	assert.Equal(t, 0, l.Active())
}

func TestLoadLimiterTimesOut(t *testing.T) {
	l := NewLoadLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	defer l.Release()

	start := time.Now()
	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, ErrTooManyLoads)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestLoadLimiterContextCancelled(t *testing.T) {
	l := NewLoadLimiter(1, time.Minute)
	require.NoError(t, l.Acquire(context.Background()))
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Acquire(ctx), context.Canceled)
}

func TestLoadLimiterDefaults(t *testing.T) {
	l := NewLoadLimiter(0, 0)
	assert.Equal(t, DefaultMaxConcurrentLoads, l.Available())
	assert.Equal(t, DefaultMaxLoadWait, l.maxWait)
}

func TestLoadLimiterConcurrentLoads(t *testing.T) {
	l := NewLoadLimiter(2, time.Second)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				errs <- err
				return
			}
			defer l.Release()
			if n := l.Active(); n > 2 {
				t.Errorf("active = %d, want at most 2", n)
			}
			tbl, err := Load(strings.NewReader("a,b\n1,2\n"))
			if err == nil && tbl.NumRows() != 1 {
				t.Errorf("rows = %d, want 1", tbl.NumRows())
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 0, l.Active())
}

func TestLoadLimiterWaitForDrain(t *testing.T) {
	l := NewLoadLimiter(1, time.Second)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.WaitForDrain(ctx), context.DeadlineExceeded)

	go func() {
		time.Sleep(10 * time.Millisecond)
		l.Release()
	}()
	assert.NoError(t, l.WaitForDrain(context.Background()))
	assert.Equal(t, 0, l.Active())
}
