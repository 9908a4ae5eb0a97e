package async_test

import (
	"errors"
	"sync"
	"testing"

	async "github.com/b97tsk/asynchandle"
	"github.com/stretchr/testify/require"
)

func TestBoundedQueueFIFO(t *testing.T) {
	q := async.NewBoundedQueue[int](4)

	for i := 1; i <= 4; i++ {
		h := q.Push(i)
		require.True(t, h.IsReady(), "push into a non-full queue suspended")
	}
	require.Equal(t, 4, q.Len())

	for i := 1; i <= 4; i++ {
		v, err := q.Pop().Await()
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
	require.Zero(t, q.Len())
}

func TestBoundedQueueBackpressure(t *testing.T) {
	q := async.NewBoundedQueue[int](2)

	require.True(t, q.Push(1).IsReady())
	require.True(t, q.Push(2).IsReady())

	// Third push parks until a pop makes room.
	pushed := false
	q.Push(3).AttachCallback(func(h *async.Handle[async.Unit]) {
		_, err := h.TryValue()
		require.NoError(t, err)
		pushed = true
	}).Resume()
	require.False(t, pushed)

	v, err := q.Pop().Await()
	require.NoError(t, err)
	require.Equal(t, 1, v)
	require.True(t, pushed, "pop did not refill from the waiting pusher")
	require.Equal(t, 2, q.Len())

	// Waiter ordering survived: 2, then 3.
	for _, want := range []int{2, 3} {
		v, err := q.Pop().Await()
		require.NoError(t, err)
		require.Equal(t, want, v)
	}
}

func TestBoundedQueueDirectHandOff(t *testing.T) {
	q := async.NewBoundedQueue[int](2)

	var got int
	var gotErr error
	received := false
	q.Pop().AttachCallback(func(h *async.Handle[int]) {
		got, gotErr = h.TryValue()
		received = true
	}).Resume()
	require.False(t, received)

	// The push resolves the parked popper directly; nothing is buffered.
	require.True(t, q.Push(99).IsReady())
	require.True(t, received)
	require.NoError(t, gotErr)
	require.Equal(t, 99, got)
	require.Zero(t, q.Len())
}

func TestBoundedQueueClose(t *testing.T) {
	t.Run("WakesPendingPoppers", func(t *testing.T) {
		q := async.NewBoundedQueue[int](2)
		myErr := errors.New("shutting down")

		var gotErr error
		q.Pop().AttachCallback(func(h *async.Handle[int]) {
			_, gotErr = h.TryValue()
		}).Resume()

		q.SetClosed(myErr)
		require.ErrorIs(t, gotErr, myErr)
	})
	t.Run("DrainsBeforeErroring", func(t *testing.T) {
		q := async.NewBoundedQueue[int](2)
		require.True(t, q.Push(1).IsReady())
		q.SetClosed(nil)

		// Buffered values still come out; pushes still succeed while there
		// is room.
		require.True(t, q.Push(2).IsReady())
		for _, want := range []int{1, 2} {
			v, err := q.Pop().Await()
			require.NoError(t, err)
			require.Equal(t, want, v)
		}

		_, err := q.Pop().Await()
		require.ErrorIs(t, err, async.ErrQueueClosed)
	})
}

func TestBoundedQueueClear(t *testing.T) {
	q := async.NewBoundedQueue[int](2)
	require.True(t, q.Push(1).IsReady())
	require.True(t, q.Push(2).IsReady())

	resumed := false
	q.Push(3).AttachCallback(func(h *async.Handle[async.Unit]) {
		resumed = true
	}).Resume()

	q.Clear()
	require.Zero(t, q.Len())
	require.True(t, resumed, "clear did not resume the stuck pusher")
}

func TestBoundedQueueConcurrent(t *testing.T) {
	// N producers and N consumers over a small buffer; every pushed value
	// must come out exactly once.
	q := async.NewBoundedQueue[int](3)

	const producers = 4
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if _, err := q.Push(p*perProducer + i).Await(); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}

	var mu sync.Mutex
	seen := make(map[int]bool)
	for c := 0; c < producers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				v, err := q.Pop().Await()
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				if seen[v] {
					t.Error("value popped twice:", v)
				}
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, producers*perProducer)
	require.Zero(t, q.Len())
}
