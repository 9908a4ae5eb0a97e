package async

import (
	"sync"
	"time"
)

// Clock abstracts the time source a [Scheduler] runs on. The default is
// the system clock; tests substitute a manual clock via [WithClock] to
// make timer ordering deterministic.
type Clock interface {
	Now() time.Time
	// After returns a channel that receives after d has elapsed.
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Scheduler resolves sleep handles at deadlines. Pending timers sit in a
// deadline-ordered queue served by one worker goroutine, which sleeps
// until the earliest deadline and resolves due timers in order.
//
// Each timer carries an opaque ident, used to cancel it ([Scheduler.Cancel])
// or, for alertable sleeps keyed by an [AlertFlag], to jump its deadline to
// now ([Scheduler.Alert]). Idents should be unique among pending timers;
// when they are not, cancel and alert act on the timer closest to its
// deadline.
//
// All methods are safe for concurrent use.
type Scheduler struct {
	clock Clock

	mu     sync.Mutex
	timers priorityqueue[*timer]
	closed bool

	kick     chan Unit
	stop     chan Unit
	done     chan Unit
	stopOnce sync.Once
}

type timer struct {
	deadline time.Time
	rc       ResultChannel[Unit]
	ident    any
}

func (t *timer) less(u *timer) bool {
	return t.deadline.Before(u.deadline)
}

// SchedulerOption configures a Scheduler at construction.
type SchedulerOption func(*Scheduler)

// WithClock makes the Scheduler run on c instead of the system clock.
func WithClock(c Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// NewScheduler returns a running Scheduler. Call [Scheduler.Close] to stop
// its worker.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		clock: systemClock{},
		kick:  make(chan Unit, 1),
		stop:  make(chan Unit),
		done:  make(chan Unit),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.worker()
	return s
}

// Close stops the worker and cancels every pending timer: their consumers
// observe [ErrCanceled]. Close waits for the worker to exit.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// SleepUntil returns a Handle that resolves once tp has passed. The timer
// is scheduled when a consumer attaches. ident identifies the timer for
// [Scheduler.Cancel]; it may be nil if the sleep will never be canceled.
func (s *Scheduler) SleepUntil(tp time.Time, ident any) *Handle[Unit] {
	return NewFunc(func(rc ResultChannel[Unit]) *PreparedTask {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return rc.Drop()
		}
		s.timers.Push(&timer{deadline: tp, rc: rc.Park(), ident: ident})
		s.mu.Unlock()
		s.wake()
		return nil
	})
}

// SleepFor is SleepUntil relative to the scheduler's clock.
func (s *Scheduler) SleepFor(d time.Duration, ident any) *Handle[Unit] {
	return s.SleepUntil(s.clock.Now().Add(d), ident)
}

// SleepUntilAlertable is SleepUntil keyed by flag, with the alert protocol
// applied: if flag is already set, the sleep resolves immediately instead
// of being scheduled, and a later [Scheduler.Alert] with the same flag
// advances the pending deadline to now. The flag is inspected under the
// scheduler's lock, so an Alert either sees the timer or preempts it.
func (s *Scheduler) SleepUntilAlertable(flag *AlertFlag, tp time.Time) *Handle[Unit] {
	if flag == nil {
		panic("async: SleepUntilAlertable called with a nil flag")
	}
	return NewFunc(func(rc ResultChannel[Unit]) *PreparedTask {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return rc.Drop()
		}
		if flag.IsSet() {
			s.mu.Unlock()
			return rc.Set(Unit{})
		}
		s.timers.Push(&timer{deadline: tp, rc: rc.Park(), ident: flag})
		s.mu.Unlock()
		s.wake()
		return nil
	})
}

// SleepForAlertable is SleepUntilAlertable relative to the scheduler's
// clock.
func (s *Scheduler) SleepForAlertable(flag *AlertFlag, d time.Duration) *Handle[Unit] {
	return s.SleepUntilAlertable(flag, s.clock.Now().Add(d))
}

// Alert sets flag and, if a timer keyed by it is pending, advances that
// timer's deadline to now, so its sleeper resolves on the worker's next
// pass. A sleeper not yet scheduled is preempted instead: its alertable
// sleep resolves immediately on attach.
func (s *Scheduler) Alert(flag *AlertFlag) {
	flag.Set()
	s.mu.Lock()
	if t, ok := s.timers.RemoveMatch(func(t *timer) bool { return t.ident == flag }); ok {
		t.deadline = s.clock.Now()
		s.timers.Push(t)
	}
	s.mu.Unlock()
	s.wake()
}

// Cancel removes the pending timer identified by ident and resolves its
// sleeper with [ErrCanceled], returning a PreparedTask that resumes it. A
// nil return means no timer matched.
func (s *Scheduler) Cancel(ident any) *PreparedTask {
	if t, ok := s.remove(ident); ok {
		return t.rc.Drop()
	}
	return nil
}

// CancelWithError is Cancel resolving the sleeper to err instead.
func (s *Scheduler) CancelWithError(ident any, err error) *PreparedTask {
	if t, ok := s.remove(ident); ok {
		return t.rc.SetError(err)
	}
	return nil
}

func (s *Scheduler) remove(ident any) (*timer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers.RemoveMatch(func(t *timer) bool { return t.ident == ident })
}

func (s *Scheduler) wake() {
	select {
	case s.kick <- Unit{}:
	default:
	}
}

func (s *Scheduler) worker() {
	defer close(s.done)
	for {
		var wait <-chan time.Time
		for {
			s.mu.Lock()
			if s.timers.Empty() {
				s.mu.Unlock()
				break
			}
			t := s.timers.Peek()
			now := s.clock.Now()
			if t.deadline.After(now) {
				d := t.deadline.Sub(now)
				s.mu.Unlock()
				wait = s.clock.After(d)
				break
			}
			s.timers.Pop()
			s.mu.Unlock()
			t.rc.Set(Unit{}).Resume()
		}
		select {
		case <-s.kick:
		case <-wait:
		case <-s.stop:
			s.drain()
			return
		}
	}
}

// drain cancels whatever is still pending at shutdown.
func (s *Scheduler) drain() {
	s.mu.Lock()
	var pending []*timer
	for !s.timers.Empty() {
		pending = append(pending, s.timers.Pop())
	}
	s.mu.Unlock()
	for _, t := range pending {
		t.rc.Drop().Resume()
	}
}
