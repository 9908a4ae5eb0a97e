package async

import "errors"

// ErrCanceled is returned by [Handle.TryValue] and [Handle.Await] when a
// Handle resolves to Empty: its producer finished (or was dropped) without
// writing a value or an error.
var ErrCanceled = errors.New("async: canceled")

// ErrInvalidState is returned by [Handle.TryValue] when the Handle is not
// ready yet. Other state violations, such as attaching a second consumer or
// writing an already-used ResultChannel, panic instead.
var ErrInvalidState = errors.New("async: invalid state")

// ErrQueueClosed is the default error a [BoundedQueue] reports to pending
// and future poppers once it has been closed with no explicit error.
var ErrQueueClosed = errors.New("async: queue closed")
