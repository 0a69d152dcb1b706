package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// HTTPError is returned for transport failures, timeouts and non-2xx responses
type HTTPError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *HTTPError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request ran out of time
func (e *HTTPError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// NotFound reports whether the remote answered 404
func (e *HTTPError) NotFound() bool {
	return e.StatusCode == 404
}
