package ports

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNetwork wraps every transport-level failure reaching the remote service.
var ErrNetwork = errors.New("network error")

// StatusError is a non-2xx reply from the remote service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote service responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("remote service responded %d: %s", e.StatusCode, e.Message)
}

// IsConflict reports whether the server rejected a semantically invalid
// request, as opposed to failing for reasons unrelated to its content.
func (e *StatusError) IsConflict() bool {
	switch e.StatusCode {
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	default:
		return false
	}
}

// IsNetworkError reports whether err is a connectivity failure.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// AsStatusError extracts the remote status error from err, if any.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
