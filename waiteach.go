package async

import "sync/atomic"

// WaitEachOrdered waits over a fixed set of handles and reports their
// completions one at a time, in the order they actually completed — not the
// order they were registered. Handles are registered with [WaitEachAdd],
// which assigns each an index; each call to [WaitEachOrdered.Next] then
// resolves to the index of the next completion. Errors are never absorbed:
// retrieve the indexed handle's result yourself to observe them.
//
// Completions and the consumer race over a cell array indexed by completion
// sequence number. Cell values: 0 means idle, 1 means the consumer is
// parked on this cell, and i+2 records that the handle with index i
// completed in this position. An atomic exchange on the cell decides each
// race: whichever side observes the other's token delivers the index.
//
// Registration and Next must happen on one goroutine (the consumer);
// completions may arrive from any goroutine.
type WaitEachOrdered struct {
	cells []atomic.Uint64
	seq   atomic.Uint64 // next completion position

	// Consumer side. Only touched by Next and by the one completer that
	// observed the consumer's parked token.
	next     int
	count    int
	consumer ResultChannel[int]
}

// NewWaitEach returns a WaitEachOrdered with room for n registrations.
func NewWaitEach(n int) *WaitEachOrdered {
	if n < 0 {
		panic("async: NewWaitEach with negative capacity")
	}
	return &WaitEachOrdered{cells: make([]atomic.Uint64, n)}
}

// WaitEachAdd registers h with w and returns the index that
// [WaitEachOrdered.Next] will report when h completes. It attaches to h, so
// a deferred producer is armed here. Registering more handles than w has
// room for panics.
func WaitEachAdd[T any](w *WaitEachOrdered, h *Handle[T]) int {
	if w.count >= len(w.cells) {
		panic("async: WaitEachOrdered is full")
	}
	i := w.count
	w.count++
	h.AttachCallback(func(*Handle[T]) {
		w.complete(i)
	}).Resume()
	return i
}

// complete claims the next completion position for index i and, if the
// consumer was already parked there, wakes it.
func (w *WaitEachOrdered) complete(i int) {
	pos := w.seq.Add(1) - 1
	if prev := w.cells[pos].Swap(uint64(i + 2)); prev == 1 {
		rc := w.consumer
		w.consumer = ResultChannel[int]{}
		w.next++
		rc.Set(i).Resume()
	}
}

// Next returns a Handle that resolves to the index of the next completion.
// If a completion is already queued, the Handle is ready immediately. Once
// every registered handle's completion has been consumed, Next returns an
// Empty handle, observed as [ErrCanceled].
func (w *WaitEachOrdered) Next() *Handle[int] {
	if w.next >= w.count {
		return NewEmpty[int]()
	}
	if v := w.cells[w.next].Load(); v != 0 {
		// Already completed: the completer will not touch this cell again.
		w.next++
		return NewValue(int(v - 2))
	}
	return NewFunc(func(rc ResultChannel[int]) *PreparedTask {
		pos := w.next
		w.consumer = rc.Park()
		if prev := w.cells[pos].Swap(1); prev != 0 {
			// A completer got here first; its index is queued in the cell.
			w.consumer = ResultChannel[int]{}
			w.next++
			return rc.Set(int(prev - 2))
		}
		return nil
	})
}
