package async

import "sync/atomic"

// Task is a goroutine-backed producer for a [Handle]: its function runs on
// its own goroutine, exactly once, and its return value (or panic) is
// written into the Handle returned by [NewTaskHandle].
//
// A Task must be started through a Handle — directly with [NewTaskHandle]
// and [Handle.Await]/[Handle.AttachCallback], or with the [Spawn]
// convenience — not run twice and not run bare.
type Task[T any] struct {
	fn      func() (T, error)
	started atomic.Bool
}

// NewTask wraps fn as a Task. fn runs on its own goroutine when the Task's
// Handle is attached or detached.
func NewTask[T any](fn func() (T, error)) *Task[T] {
	if fn == nil {
		panic("async: NewTask called with a nil function")
	}
	return &Task[T]{fn: fn}
}

// Spawn wraps fn in a Task and returns its Handle. It is shorthand for
// NewTaskHandle(NewTask(fn)).
func Spawn[T any](fn func() (T, error)) *Handle[T] {
	return NewTaskHandle(NewTask(fn))
}

func (t *Task[T]) start(rc ResultChannel[T]) {
	t.markStarted()
	go t.run(rc, false)
}

func (t *Task[T]) startDetached(rc ResultChannel[T]) {
	t.markStarted()
	go t.run(rc, true)
}

func (t *Task[T]) markStarted() {
	if !t.started.CompareAndSwap(false, true) {
		panic("async: Task already started")
	}
}

func (t *Task[T]) run(rc ResultChannel[T], detached bool) {
	var v T
	var err error
	if perr := tryRun(func() { v, err = t.fn() }); perr != nil {
		err = perr
	}

	var pt *PreparedTask
	if err != nil {
		pt = rc.SetError(err)
	} else {
		pt = rc.Set(v)
	}
	pt.Resume()

	if detached && err != nil {
		callErrorHook(err)
	}
}
