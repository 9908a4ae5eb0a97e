package async

import "sync"

// Producer is a deferred function that produces a value for a [Handle]. It
// receives exclusive write access to the Handle via rc and may optionally
// return a [PreparedTask] for a party that should run as a result (used by
// components, like [Mutex] and [Scheduler], that start another goroutine's
// worth of work as a side effect of arming a Handle).
type Producer[T any] func(rc ResultChannel[T]) *PreparedTask

// Handle represents a T (or an error, or nothing) that may not yet exist.
// It is the single value-bearing type in this package; every other type
// either produces a Handle or consumes one.
//
// A Handle may be attached by at most one consumer, via [Handle.Await],
// [Handle.AttachCallback], or [Handle.Detach]. Attaching a second consumer
// panics.
type Handle[T any] struct {
	mu sync.Mutex

	resolved bool
	isEmpty  bool
	value    T
	err      error

	fn   Producer[T]
	task *Task[T]

	attached bool
	done     chan struct{}
	callback func(*Handle[T])
}

// NewValue returns a Handle already resolved to v.
func NewValue[T any](v T) *Handle[T] {
	return &Handle[T]{resolved: true, value: v}
}

// NewError returns a Handle already resolved to err. err must not be nil.
func NewError[T any](err error) *Handle[T] {
	if err == nil {
		panic("async: NewError called with a nil error")
	}
	return &Handle[T]{resolved: true, err: err}
}

// NewEmpty returns a Handle already resolved to nothing; observing it
// yields [ErrCanceled].
func NewEmpty[T any]() *Handle[T] {
	return &Handle[T]{resolved: true, isEmpty: true}
}

// NewFunc returns a Handle whose value is produced lazily by fn, the first
// time a consumer attaches.
func NewFunc[T any](fn Producer[T]) *Handle[T] {
	if fn == nil {
		panic("async: NewFunc called with a nil producer")
	}
	return &Handle[T]{fn: fn}
}

// NewTaskHandle returns a Handle whose value is produced by running t on its
// own goroutine, started lazily the first time a consumer attaches.
func NewTaskHandle[T any](t *Task[T]) *Handle[T] {
	if t == nil {
		panic("async: NewTaskHandle called with a nil task")
	}
	return &Handle[T]{task: t}
}

// IsReady reports whether h has a terminal value: Value, Error, or Empty.
func (h *Handle[T]) IsReady() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resolved
}

// TryValue returns h's value if h.IsReady, propagating a stored error or
// reporting [ErrCanceled] for an Empty handle. If h is not yet ready, it
// returns [ErrInvalidState].
func (h *Handle[T]) TryValue() (T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tryValueLocked()
}

func (h *Handle[T]) tryValueLocked() (T, error) {
	var zero T
	switch {
	case !h.resolved:
		return zero, ErrInvalidState
	case h.isEmpty:
		return zero, ErrCanceled
	case h.err != nil:
		return zero, h.err
	default:
		return h.value, nil
	}
}

// Await attaches the calling goroutine as h's consumer, arming h's producer
// if it has one, and blocks until h resolves.
func (h *Handle[T]) Await() (T, error) {
	done := h.attachWait()
	<-done
	return h.TryValue()
}

// attachWait is the shared first-attach path for Await: it registers for
// notification and arms the producer, all while holding h.mu just long
// enough to flip the single-consumer latch and snapshot the producer.
func (h *Handle[T]) attachWait() <-chan struct{} {
	h.mu.Lock()
	if h.attached {
		h.mu.Unlock()
		panic("async: Handle already has a consumer")
	}
	h.attached = true

	done := make(chan struct{})
	if h.resolved {
		close(done)
		h.mu.Unlock()
		return done
	}

	h.done = done
	fn, task := h.fn, h.task
	h.fn, h.task = nil, nil
	h.mu.Unlock()

	// A blocking consumer has no way to defer whoever the producer wants
	// run next, so resume it here.
	h.runProducer(fn, task).Resume()
	return done
}

// AttachCallback attaches cb as h's consumer: cb runs exactly once, with h
// as its argument, once h resolves. If h is already ready, cb runs
// immediately, on the calling goroutine, and AttachCallback returns nil.
// Otherwise it arms h's producer and returns a [PreparedTask] for any party
// the producer says should run as a result of that. If the producer
// resolves h before returning, the returned PreparedTask is cb's own
// invocation, so the caller must resume it for cb to run.
func (h *Handle[T]) AttachCallback(cb func(*Handle[T])) *PreparedTask {
	if cb == nil {
		panic("async: AttachCallback called with a nil callback")
	}

	h.mu.Lock()
	if h.attached {
		h.mu.Unlock()
		panic("async: Handle already has a consumer")
	}
	h.attached = true

	if h.resolved {
		h.mu.Unlock()
		cb(h)
		return nil
	}

	h.callback = cb
	fn, task := h.fn, h.task
	h.fn, h.task = nil, nil
	h.mu.Unlock()

	return h.runProducer(fn, task)
}

// Detach arms h's producer, if any, without registering a consumer. It is
// this module's explicit stand-in for spec's "destroyed while Deferred"
// rule: Go has no deterministic destructors, so a Handle that is simply
// dropped never runs its producer at all. Call Detach when that is not what
// you want — to fire a side-effecting producer with no consumer. Its value
// is discarded. A Task's error goes to the process-wide hook; for a
// producer function, only an error already written when the function
// returns goes to the hook, and an error written later through a parked
// channel is not reported. See DESIGN.md for the rationale.
//
// Detach is a no-op if a consumer has already attached.
func (h *Handle[T]) Detach() {
	h.mu.Lock()
	if h.attached {
		h.mu.Unlock()
		return
	}
	h.attached = true

	if h.resolved {
		h.mu.Unlock()
		return
	}

	fn, task := h.fn, h.task
	h.fn, h.task = nil, nil
	h.mu.Unlock()

	switch {
	case fn != nil:
		go h.runDetachedFunc(fn)
	case task != nil:
		task.startDetached(h.resultChannel())
	default:
		h.resultChannel().Drop()
	}
}

func (h *Handle[T]) resultChannel() ResultChannel[T] {
	return ResultChannel[T]{s: &resultChannelState[T]{h: h}}
}

// runProducer invokes exactly one of fn or task (chosen by whichever is
// non-nil; both nil means h was Empty/Deferred-less and resolves to Empty
// immediately), returning whatever PreparedTask the producer side hands
// back for the caller to resume.
func (h *Handle[T]) runProducer(fn Producer[T], task *Task[T]) *PreparedTask {
	rc := h.resultChannel()
	switch {
	case fn != nil:
		return runHandleFunc(fn, rc)
	case task != nil:
		task.start(rc)
		return nil
	default:
		return rc.Drop()
	}
}

func (h *Handle[T]) runDetachedFunc(fn Producer[T]) {
	rc := h.resultChannel()
	pt := runHandleFunc(fn, rc)
	pt.Resume()

	h.mu.Lock()
	err := h.err
	h.mu.Unlock()
	if err != nil {
		callErrorHook(err)
	}
}

// runHandleFunc runs fn, converting a panic into an error written through
// rc, and drops rc if fn returned without using or parking it, so a
// producer that forgets its channel cancels its consumer instead of
// hanging it.
func runHandleFunc[T any](fn Producer[T], rc ResultChannel[T]) *PreparedTask {
	var pt *PreparedTask
	perr := tryRun(func() { pt = fn(rc) })
	if perr != nil {
		if !rc.s.used && !rc.s.parked {
			return rc.SetError(perr)
		}
		// fn had already written or parked its channel and then panicked on
		// the way out; nobody is positioned to observe this second failure,
		// so it goes to the same place a detached Task's error would.
		callErrorHook(perr)
		return pt
	}
	if !rc.s.used && !rc.s.parked {
		return rc.Drop()
	}
	return pt
}

// CopyValue returns an independent Handle in the same terminal state as h,
// if h is ready with a Value or Error. If h is not ready, or is ready as
// Empty, the copy is Empty too. CopyValue never replicates a producer: it
// is defined only over already-resolved handles (spec §4.1, §9).
func (h *Handle[T]) CopyValue() *Handle[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case !h.resolved || h.isEmpty:
		return NewEmpty[T]()
	case h.err != nil:
		return NewError[T](h.err)
	default:
		return NewValue(h.value)
	}
}

// resolve installs h's terminal state exactly once and returns a
// PreparedTask for whichever consumer should run as a result: closing the
// Await channel (if any) happens immediately, since waking a blocked
// goroutine needs no deferral, while an AttachCallback consumer is wrapped
// in the returned PreparedTask so the caller can choose when it runs.
func (h *Handle[T]) resolve(value T, err error, isEmpty bool) *PreparedTask {
	h.mu.Lock()
	if h.resolved {
		h.mu.Unlock()
		panic("async: Handle resolved twice")
	}
	h.resolved = true
	h.value, h.err, h.isEmpty = value, err, isEmpty
	done := h.done
	cb := h.callback
	h.done, h.callback = nil, nil
	h.mu.Unlock()

	if done != nil {
		close(done)
	}
	if cb != nil {
		return preparedTaskOf(func() { cb(h) })
	}
	return nil
}

// resultChannelState is the shared, heap-allocated backing for a
// [ResultChannel]: ResultChannel values are cheap pointer copies of this,
// with the used flag giving them move-only, write-once semantics even
// though Go cannot enforce linear typing at compile time.
type resultChannelState[T any] struct {
	h      *Handle[T]
	used   bool
	parked bool
}

// ResultChannel is exclusive write capability over exactly one [Handle]
// currently being produced. A producer function receives one, and must
// resolve it with exactly one of [ResultChannel.Set], [ResultChannel.SetError],
// [ResultChannel.Drop], or [ResultChannel.Release].
type ResultChannel[T any] struct {
	s *resultChannelState[T]
}

func (rc ResultChannel[T]) take() *Handle[T] {
	if rc.s == nil || rc.s.used {
		panic("async: ResultChannel used twice")
	}
	rc.s.used = true
	return rc.s.h
}

// Set resolves the channel's Handle to v and returns a PreparedTask for the
// consumer to resume.
func (rc ResultChannel[T]) Set(v T) *PreparedTask {
	return rc.take().resolve(v, nil, false)
}

// SetError resolves the channel's Handle to err and returns a PreparedTask
// for the consumer to resume. err must not be nil.
func (rc ResultChannel[T]) SetError(err error) *PreparedTask {
	if err == nil {
		panic("async: SetError called with a nil error")
	}
	var zero T
	return rc.take().resolve(zero, err, false)
}

// Drop resolves the channel's Handle to Empty — the consumer observes
// [ErrCanceled] — and returns a PreparedTask for the consumer to resume.
func (rc ResultChannel[T]) Drop() *PreparedTask {
	var zero T
	return rc.take().resolve(zero, nil, true)
}

// Park marks rc as intentionally outliving the producer call, suspending
// the drop-on-return rule: a producer that stores rc somewhere — a timer
// queue, a waiter list — and resolves it from another goroutine later must
// park it, or the runtime drops it the moment the producer returns. Park
// returns rc for use in the storing expression.
func (rc ResultChannel[T]) Park() ResultChannel[T] {
	if rc.s == nil || rc.s.used {
		panic("async: ResultChannel used twice")
	}
	rc.s.parked = true
	return rc
}

// Release yields the raw Handle without writing it, consuming rc. The
// caller takes on the responsibility of resolving the Handle some other
// way; using rc again after Release panics, the same as after Set or Drop.
func (rc ResultChannel[T]) Release() *Handle[T] {
	return rc.take()
}
