package vango

import (
	"fmt"

	herrors "github.com/vango-dev/hydrate/internal/errors"
)

// ErrRuntimeClosed is returned when work is submitted to a Runtime whose
// loop has stopped.
var ErrRuntimeClosed error = herrors.New("E001")

// ErrLoopReentry is the panic value raised when Runtime.Do is called from a
// task that is already running on the runtime loop. Such a call could never
// complete because the loop is busy running the caller.
var ErrLoopReentry error = herrors.New("E008")

// TaskPanicError reports a panic recovered from a task submitted with Do.
type TaskPanicError struct {
	Value any
}

// Error implements the error interface.
func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("E002: task panicked: %v", e.Value)
}
