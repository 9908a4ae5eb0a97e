package async

import "sync/atomic"

// AlertFlag is an atomic one-shot signal. Its address is a stable identity
// used by the [Scheduler] and [Distributor] to locate the registration an
// alert should wake: [Scheduler.SleepUntilAlertable] and
// [Distributor.RegisterAlertable] both key their bookkeeping on the flag's
// pointer value, not on its contents.
//
// The zero AlertFlag is unset.
type AlertFlag struct {
	set atomic.Bool
}

// Set marks the flag as set. It reports whether this call was the one that
// transitioned it from unset to set.
func (f *AlertFlag) Set() bool {
	return f.set.CompareAndSwap(false, true)
}

// IsSet reports whether the flag is currently set.
func (f *AlertFlag) IsSet() bool {
	return f.set.Load()
}

// TestAndReset reports whether the flag was set, and clears it.
func (f *AlertFlag) TestAndReset() bool {
	return f.set.Swap(false)
}

// Reset clears the flag.
func (f *AlertFlag) Reset() {
	f.set.Store(false)
}
