package toggle

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// Status descriptors carried by a TransportFailure.
const (
	StatusTimeout = "timeout"
	StatusAbort   = "abort"
	StatusError   = "error"
)

// TransportFailure is the only failure kind of the toggle client. It covers
// both network errors and non-2xx answers; StatusCode is 0 for the former.
type TransportFailure struct {
	Status     string
	Reason     string
	StatusCode int
}

func (f *TransportFailure) Error() string {
	return f.Status + ": " + f.Reason
}

// failureFromError classifies an error returned by the HTTP layer.
func failureFromError(err error) *TransportFailure {
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &TransportFailure{Status: StatusTimeout, Reason: err.Error()}
	case errors.As(err, &ne) && ne.Timeout():
		return &TransportFailure{Status: StatusTimeout, Reason: err.Error()}
	case errors.Is(err, context.Canceled):
		return &TransportFailure{Status: StatusAbort, Reason: err.Error()}
	default:
		return &TransportFailure{Status: StatusError, Reason: err.Error()}
	}
}

func failureFromStatus(code int, status string) *TransportFailure {
	reason := http.StatusText(code)
	if reason == "" {
		reason = status
	}
	return &TransportFailure{Status: StatusError, Reason: reason, StatusCode: code}
}
