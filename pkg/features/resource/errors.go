package resource

import (
	herrors "github.com/vango-dev/hydrate/internal/errors"
	"github.com/vango-dev/hydrate/pkg/protocol"
)

// LoaderError is the Err of an Errored state produced by a failed load.
type LoaderError struct {
	Generation uint64
	Err        error
}

// Error implements the error interface.
func (e *LoaderError) Error() string {
	if e.Err == nil {
		return "resource: load failed"
	}
	return "resource: load failed: " + e.Err.Error()
}

// Unwrap returns the loader's error.
func (e *LoaderError) Unwrap() error {
	return e.Err
}

// Is matches the registered loader error code.
func (e *LoaderError) Is(target error) bool {
	t, ok := target.(*herrors.Error)
	return ok && t.Code == "E010"
}

// RemoteError is the cause of a LoaderError adopted from the server. Its
// text is exactly the text of the server-side cause.
type RemoteError struct {
	Code    protocol.ErrorCode
	Message string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return e.Message
}
