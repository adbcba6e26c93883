package utils

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError wraps a panic value as an error
type PanicError struct {
	Value      interface{}
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// RecoverWithCallback recovers from a panic and hands it to callback. It
// must be deferred directly.
func RecoverWithCallback(callback func(error)) {
	if r := recover(); r != nil {
		err := newPanicError(r)
		if callback != nil {
			callback(err)
		}
	}
}

func newPanicError(r any) *PanicError {
	stack := string(debug.Stack())
	slog.Error("Recovered from panic", "panic", r, "stack", stack)
	return &PanicError{Value: r, StackTrace: stack}
}
