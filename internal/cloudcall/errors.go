package cloudcall

import (
	"errors"
	"fmt"
)

// ErrAuthExpired is returned when the reporting API responds 401. Callers
// surface it distinctly so the UI can force a re-login instead of retrying.
var ErrAuthExpired = errors.New("cloudcall: authentication expired")

// NetworkError wraps a transport-level failure where no response was
// received at all.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cloudcall: network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteError is a non-2xx response with a body. The body is truncated to
// keep log lines bounded.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("cloudcall: remote rejected request (%d): %s", e.StatusCode, e.Body)
}

// MalformedError means the response arrived but could not be decoded into
// the expected envelope.
type MalformedError struct {
	Op  string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("cloudcall: malformed response from %s: %v", e.Op, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// IsAuthExpired reports whether err is (or wraps) an expired-credential
// failure.
func IsAuthExpired(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}
