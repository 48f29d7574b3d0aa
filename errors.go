package ragchat

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a user action failed a precondition. Both the
	// upload and the chat path report precondition failures by wrapping it.
	ErrValidation = errors.New("validation error")

	// ErrNoFileSelected indicates an upload was requested with no pending file.
	ErrNoFileSelected = fmt.Errorf("no file selected: %w", ErrValidation)

	// ErrEmptyMessage indicates a send was requested with blank text.
	ErrEmptyMessage = fmt.Errorf("message is empty: %w", ErrValidation)
)

// ErrorKind classifies a failed service call. All kinds are handled the same
// way by Session; the kind only informs what is shown to the user.
type ErrorKind int

const (
	ErrorTransport ErrorKind = iota + 1 // Request never produced a response.
	ErrorStatus                         // Response had a non-2xx status code.
	ErrorDecode                         // Response body was not the expected JSON.
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorTransport:
		return "transport"
	case ErrorStatus:
		return "status"
	case ErrorDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// ServiceError is returned by ChatService and UploadService implementations
// when a call fails.
type ServiceError struct {
	Op         string // "chat" or "upload"
	Kind       ErrorKind
	StatusCode int // set for ErrorStatus
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Kind == ErrorStatus && e.Err != nil:
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	case e.Kind == ErrorStatus:
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ErrorKindOf returns the kind of the first ServiceError in err's chain, or
// zero if there is none.
func ErrorKindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
