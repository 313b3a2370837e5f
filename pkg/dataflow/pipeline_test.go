package dataflow

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_Sequential(t *testing.T) {
	ctx := context.Background()

	out := Map(ctx, From(ctx, 1, 2, 3), func(n int) (int, error) {
		return n * 2, nil
	})

	got, err := Collect(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, got)
}

func TestMap_Parallel(t *testing.T) {
	ctx := context.Background()
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	out := Map(ctx, From(ctx, items...), func(n int) (int, error) {
		return n + 100, nil
	}, WithWorkers(8), WithBufferSize(len(items)))

	got, err := Collect(ctx, out)
	require.NoError(t, err)
	require.Len(t, got, len(items))

	sort.Ints(got)
	for i, v := range got {
		assert.Equal(t, i+100, v)
	}
}

func TestMap_ErrorDropsItem(t *testing.T) {
	ctx := context.Background()
	var handled int32

	out := Map(ctx, From(ctx, 1, 2, 3), func(n int) (int, error) {
		if n == 2 {
			return 0, errors.New("boom")
		}
		return n, nil
	}, WithErrorHandler(func(err error) bool {
		atomic.AddInt32(&handled, 1)
		return true
	}))

	got, err := Collect(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&handled))
}

func TestMap_RetrySucceeds(t *testing.T) {
	ctx := context.Background()
	var calls int32

	out := Map(ctx, From(ctx, 1), func(n int) (int, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return 0, errors.New("transient")
		}
		return n, nil
	}, WithRetry(3, func(attempt int) time.Duration { return time.Millisecond }))

	got, err := Collect(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCollect_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	blocked := make(chan int)
	cancel()

	_, err := Collect(ctx, Stream[int](blocked))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForEach(t *testing.T) {
	ctx := context.Background()
	var sum int64

	err := ForEach(ctx, From(ctx, 1, 2, 3, 4), func(n int) error {
		atomic.AddInt64(&sum, int64(n))
		return nil
	}, WithWorkers(2))

	require.NoError(t, err)
	assert.Equal(t, int64(10), atomic.LoadInt64(&sum))
}

func TestForEach_FirstErrorSurfaces(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := ForEach(ctx, From(ctx, 1, 2, 3), func(n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, err, boom)
}

func TestFanIn(t *testing.T) {
	ctx := context.Background()

	merged := FanIn(ctx,
		From(ctx, 1, 2),
		From(ctx, 3, 4),
		From(ctx, 5),
	)

	got, err := Collect(ctx, merged)
	require.NoError(t, err)

	sort.Ints(got)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}
