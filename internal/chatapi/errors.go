package chatapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a failed upstream call.
type Kind string

const (
	KindNetwork     Kind = "network"      // no response reachable
	KindTimeout     Kind = "timeout"      // request exceeded its deadline
	KindValidation  Kind = "validation"   // 4xx other than 404/429
	KindNotFound    Kind = "not_found"    // 404
	KindRateLimited Kind = "rate_limited" // 429
	KindUnavailable Kind = "unavailable"  // 503
	KindServer      Kind = "server"       // other 5xx
	KindDecode      Kind = "decode"       // 2xx with an unreadable body
)

// Error is returned by every Client method on failure.
type Error struct {
	Kind     Kind
	Endpoint string
	Status   int
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Detail != "":
		return fmt.Sprintf("chat api %s: %s (HTTP %d): %s", e.Endpoint, e.Kind, e.Status, e.Detail)
	case e.Status != 0:
		return fmt.Sprintf("chat api %s: %s (HTTP %d)", e.Endpoint, e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("chat api %s: %s: %v", e.Endpoint, e.Kind, e.Err)
	default:
		return fmt.Sprintf("chat api %s: %s", e.Endpoint, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// DetailOf returns the upstream validation detail of err, if any.
func DetailOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusServiceUnavailable:
		return KindUnavailable
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

func transportError(endpoint string, err error) *Error {
	kind := KindNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Endpoint: endpoint, Err: err}
}
