// Package async provides a single-consumer async handle, [Handle], and a
// small family of coordination primitives built on top of it: a timer
// [Scheduler], an async [Mutex], a broadcast [Distributor], a [BoundedQueue],
// a lazy [Generator], and two composite waiters, [WaitAll] and
// [WaitEachOrdered].
//
// # The Handle
//
// A [Handle][T] represents "a T (or an error, or nothing) that may not yet
// exist". It is constructed either already resolved (with [NewValue] or
// [NewError]), or with a producer that runs lazily on first observation
// (with [NewFunc] or [NewTaskHandle]). Exactly one consumer may attach to a
// given Handle, by calling [Handle.Await] or [Handle.AttachCallback]. A
// second attach is a programming error and panics, the same way sending on
// a closed channel does. [Handle.TryValue] reads a ready Handle without
// attaching.
//
// # Tasks
//
// A [Task][T] is a goroutine-backed producer: its function runs on its own
// goroutine and its return value (or panic) is written into its Handle
// exactly once. A Task runs only once its Handle is attached or detached
// with [Handle.Detach]; a Handle that is simply dropped never starts its
// Task. An error or panic from a detached Task is reported to the
// process-wide hook installed with [SetErrorHook], not silently discarded.
//
// # Cancellation
//
// There is no cancellation tree. The only cancellation primitive is
// dropping a [ResultChannel] without writing it, which resolves its Handle
// to [ErrCanceled]. [AlertFlag] and the Distributor's alertable
// registrations build a one-shot wake-and-prevent signal out of that rule.
// The Scheduler's alertable sleeps use the same flag, but an alerted sleep
// completes normally instead of being canceled.
//
// # Concurrency model
//
// Producers may run on any goroutine. A Handle itself only synchronizes the
// handoff between its one producer and its one consumer; the composite
// types (Mutex, Distributor, BoundedQueue, Scheduler) that coordinate many
// Handles at once are internally synchronized and safe for concurrent use
// by multiple goroutines.
package async
