package async

import (
	"runtime/debug"

	sutraerrors "sutra/internal/errors"
)

// PanicLogger captures panic reports.
type PanicLogger interface {
	Error(format string, args ...any)
}

// Guard runs fn on the calling goroutine and turns a panic into a
// *errors.PanicError so callers can record it like any other failure.
func Guard(logger PanicLogger, name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, name, r)
			err = &sutraerrors.PanicError{Value: r}
		}
	}()
	return fn()
}

func logPanic(logger PanicLogger, name string, r any) {
	if logger == nil {
		return
	}
	if name == "" {
		logger.Error("recovered panic: %v, stack: %s", r, debug.Stack())
		return
	}
	logger.Error("recovered panic [%s]: %v, stack: %s", name, r, debug.Stack())
}
