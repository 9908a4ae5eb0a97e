package async

import "sync/atomic"

// Mutex is an async mutex: a goroutine that fails the fast path suspends on
// a [Handle] instead of blocking, and ownership transfers to it directly on
// unlock. Ownership is carried by an [Ownership] value rather than being
// implicit in the calling goroutine, so a lock may be acquired on one
// goroutine and released on another.
//
// Waiters queue on a lock-free stack: each Lock pushes a slot with a single
// compare-and-swap, and the owner drains the stack in bulk on unlock. The
// stack uses a per-mutex sentinel slot, the doorman, to distinguish "held
// with no queued waiters" from "free". A Lock that has to wait allocates
// one stack slot besides its Handle; the fast path allocates only the
// resolved Handle.
//
// Fairness: waiters queued between two unlocks are served FIFO. The stack
// accumulates in LIFO push order and is reversed into the served queue in
// one pass, so ordering is first-come-first-served within each batch.
//
// The zero Mutex is unlocked and ready for use.
type Mutex struct {
	requests atomic.Pointer[lockSlot]
	served   *lockSlot // owned by the current holder; never touched by others
	doorman  lockSlot
}

// lockSlot is one waiter's entry on the request stack. The doorman sentinel
// is a lockSlot too, with no result channel; it is never resumed.
type lockSlot struct {
	next *lockSlot
	rc   ResultChannel[Ownership]
}

// Ownership carries ownership of a locked [Mutex]. The zero Ownership owns
// nothing. Releasing an Ownership releases the mutex; releasing twice is a
// no-op.
type Ownership struct {
	m *Mutex
}

// Owns reports whether o currently owns a lock.
func (o *Ownership) Owns() bool {
	return o.m != nil
}

// Release releases the mutex, returning a [PreparedTask] for the waiter
// that inherited ownership (nil if the mutex became free). This lets the
// caller finish its own critical section bookkeeping before the next owner
// runs; callers with nothing to defer should use [Ownership.Unlock].
func (o *Ownership) Release() *PreparedTask {
	m := o.m
	if m == nil {
		return nil
	}
	o.m = nil
	return m.unlock()
}

// Unlock releases the mutex and immediately resumes the waiter that
// inherited ownership, if any.
func (o *Ownership) Unlock() {
	o.Release().Resume()
}

// TryLock attempts to lock m without waiting. On success it returns an
// owning Ownership and true.
func (m *Mutex) TryLock() (Ownership, bool) {
	if m.requests.CompareAndSwap(nil, &m.doorman) {
		return Ownership{m: m}, true
	}
	return Ownership{}, false
}

// Lock returns a Handle that resolves to an [Ownership] once m is
// acquired. If m is free, the returned Handle is already resolved and
// awaiting it does not suspend. Otherwise the caller's slot is pushed onto
// the request stack when a consumer attaches, and the Handle resolves when
// ownership is transferred by a prior holder's unlock.
//
// A pending Lock cannot be withdrawn; the resulting Ownership must be
// released even if the caller no longer wants the lock.
func (m *Mutex) Lock() *Handle[Ownership] {
	if o, ok := m.TryLock(); ok {
		return NewValue(o)
	}
	return NewFunc(func(rc ResultChannel[Ownership]) *PreparedTask {
		return m.addRequest(&lockSlot{rc: rc.Park()})
	})
}

// addRequest pushes s onto the request stack. If s lands on an empty stack,
// the mutex was free and s's pusher is the new owner: the stack is
// re-anchored on the doorman, anything that piled on top of s in the
// meantime is drained into the served queue, and s itself is resumed with
// ownership.
func (m *Mutex) addRequest(s *lockSlot) *PreparedTask {
	for {
		top := m.requests.Load()
		s.next = top
		if m.requests.CompareAndSwap(top, s) {
			if top != nil {
				return nil
			}
			m.makeServed(m.requests.Swap(&m.doorman), s)
			return s.rc.Set(Ownership{m: m})
		}
	}
}

// makeServed reverses the stack segment [from, to) into the served queue,
// restoring FIFO order. Only the current owner calls this.
func (m *Mutex) makeServed(from, to *lockSlot) {
	for from != to {
		next := from.next
		from.next = m.served
		m.served = from
		from = next
	}
}

// unlock transfers ownership to the next waiter, or frees the mutex if
// there is none. The common path with no new requests is a single
// compare-and-swap.
func (m *Mutex) unlock() *PreparedTask {
	if m.served == nil {
		if m.requests.CompareAndSwap(&m.doorman, nil) {
			return nil
		}
		m.makeServed(m.requests.Swap(&m.doorman), &m.doorman)
	}
	f := m.served
	m.served = f.next
	return f.rc.Set(Ownership{m: m})
}
