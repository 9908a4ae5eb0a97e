package async

// PreparedTask is a move-only handle to a continuation that is ready to run
// but has not run yet. It exists to decouple *deciding who runs next* from
// *actually running them*, so that a lock can be released before the
// resumption fires — see [Ownership.Release] and [Distributor.BroadcastInto]
// for two places in this package that rely on that separation.
//
// A zero PreparedTask (or a nil *PreparedTask) is valid and resumes as a
// no-op, mirroring spec's "if empty, yields a no-op token".
type PreparedTask struct {
	fn func()
}

// preparedTaskOf wraps fn as a PreparedTask. A nil fn yields a no-op token.
func preparedTaskOf(fn func()) *PreparedTask {
	if fn == nil {
		return nil
	}
	return &PreparedTask{fn: fn}
}

// Resume runs the continuation, if any. Calling Resume more than once only
// runs the continuation the first time; subsequent calls are no-ops, the
// same as dropping an already-resumed PreparedTask.
func (p *PreparedTask) Resume() {
	if p == nil || p.fn == nil {
		return
	}
	fn := p.fn
	p.fn = nil
	fn()
}
