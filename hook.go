package async

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrorHook is called when a detached [Task] (one with no attached
// consumer) ends in an error, including a recovered panic. There is exactly
// one hook, process-wide; install one with [SetErrorHook] at program start.
type ErrorHook func(err error)

var errorHook atomic.Pointer[ErrorHook]

func init() {
	var h ErrorHook = defaultErrorHook
	errorHook.Store(&h)
}

// SetErrorHook installs hook as the process-wide handler for errors raised
// by detached Tasks. Passing nil restores the default hook.
//
// The default hook logs the error with [zap]'s default production logger
// and terminates the process, per spec: silently swallowing a detached
// producer's error would hide bugs that an attached consumer would have
// seen immediately.
func SetErrorHook(hook ErrorHook) {
	if hook == nil {
		hook = defaultErrorHook
	}
	errorHook.Store(&hook)
}

// NopErrorHook is an [ErrorHook] that does nothing, for tests that
// intentionally exercise a detached Task's failure path.
func NopErrorHook(error) {}

func callErrorHook(err error) {
	h := *errorHook.Load()
	h(err)
}

var fallbackLogger = zap.NewExample()

func defaultErrorHook(err error) {
	logger, lerr := zap.NewProduction()
	if lerr != nil {
		logger = fallbackLogger
	}
	logger.Error("async: detached task failed", zap.Error(err))
	logger.Sync()
	os.Exit(2)
}
