package async

import "sync"

// Distributor is a fan-out broadcast point: consumers register to receive
// the next broadcast value, each through its own [Handle], and a broadcast
// resolves every registration at once. Registrations are one-shot; a
// consumer that wants every broadcast re-registers after each one.
//
// Registrations are keyed by an opaque ident so they can be individually
// revoked with [Distributor.KickOut], or — when the ident is an
// [AlertFlag] — woken and suppressed together with [Distributor.Alert].
// Sharing one ident between live registrations makes KickOut remove an
// unspecified one of them; give each registration its own ident.
//
// All methods are safe for concurrent use, except that Broadcast must not
// be called from two goroutines at once; use [Distributor.BroadcastInto]
// for concurrent broadcasters.
type Distributor[T any] struct {
	mu   sync.Mutex
	regs []distributorReg[T]
}

type distributorReg[T any] struct {
	rc    ResultChannel[T]
	ident any
}

// Register returns a Handle that resolves to the next broadcast value.
// ident identifies the registration for [Distributor.KickOut]; it may be
// nil if the registration will never be kicked out.
func (d *Distributor[T]) Register(ident any) *Handle[T] {
	return NewFunc(func(rc ResultChannel[T]) *PreparedTask {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.regs = append(d.regs, distributorReg[T]{rc: rc.Park(), ident: ident})
		return nil
	})
}

// RegisterAlertable is Register keyed by flag's identity, with the alert
// protocol applied: if flag is already set the registration is refused and
// the Handle resolves Empty, observed as [ErrCanceled]. The flag is
// inspected under the distributor's lock, so an [Distributor.Alert] either
// sees the registration or prevents it; there is no window where it does
// neither.
func (d *Distributor[T]) RegisterAlertable(flag *AlertFlag) *Handle[T] {
	if flag == nil {
		panic("async: RegisterAlertable called with a nil flag")
	}
	return NewFunc(func(rc ResultChannel[T]) *PreparedTask {
		d.mu.Lock()
		defer d.mu.Unlock()
		if flag.IsSet() {
			return rc.Drop()
		}
		d.regs = append(d.regs, distributorReg[T]{rc: rc.Park(), ident: flag})
		return nil
	})
}

// BroadcastInto resolves every current registration to v, appending one
// [PreparedTask] per registration to buf and returning it. The caller
// resumes them after BroadcastInto returns, outside the distributor's
// lock, so a resumed consumer may immediately re-register without
// deadlocking its broadcaster.
func (d *Distributor[T]) BroadcastInto(v T, buf []*PreparedTask) []*PreparedTask {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, reg := range d.regs {
		buf = append(buf, reg.rc.Set(v))
	}
	d.regs = d.regs[:0]
	return buf
}

// Broadcast resolves every current registration to v and resumes the
// consumers on the calling goroutine. Only one goroutine may call
// Broadcast at a time.
func (d *Distributor[T]) Broadcast(v T) {
	for _, pt := range d.BroadcastInto(v, nil) {
		pt.Resume()
	}
}

// KickOut removes one registration stored under ident and hands its
// result channel to resolver, which must consume it (typically with Drop,
// to cancel the consumer, or Set, to feed it a private value). The
// resolver runs under the distributor's lock; the PreparedTask it returns
// is passed back for the caller to resume outside it. If no registration
// matches, resolver is not called and KickOut returns nil.
func (d *Distributor[T]) KickOut(ident any, resolver func(ResultChannel[T]) *PreparedTask) *PreparedTask {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, reg := range d.regs {
		if reg.ident == ident {
			last := len(d.regs) - 1
			d.regs[i] = d.regs[last]
			d.regs[last] = distributorReg[T]{}
			d.regs = d.regs[:last]
			return resolver(reg.rc)
		}
	}
	return nil
}

// Alert sets flag and cancels the registration keyed by it, if one exists:
// the consumer observes [ErrCanceled], and any later RegisterAlertable
// with the same flag is refused. The returned PreparedTask resumes the
// kicked-out consumer; a nil return means no registration was waiting.
func (d *Distributor[T]) Alert(flag *AlertFlag) *PreparedTask {
	flag.Set()
	return d.KickOut(flag, func(rc ResultChannel[T]) *PreparedTask {
		return rc.Drop()
	})
}
