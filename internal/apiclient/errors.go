package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	codeNotFound = "NOT_FOUND"
	codeUpstream = "UPSTREAM_UNAVAILABLE"
	msgUpstream  = "ticket api unavailable"
)

// ErrNotFound is returned when the requested ticket does not exist upstream.
var ErrNotFound error = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string         { return "ticket not found" }
func (notFoundError) ErrorCode() string     { return codeNotFound }
func (notFoundError) ErrorStatus() int      { return http.StatusNotFound }
func (notFoundError) PublicMessage() string { return "ticket not found" }

// TransportError reports a network-level failure talking to the ticket API.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) ErrorCode() string     { return codeUpstream }
func (e *TransportError) ErrorStatus() int      { return http.StatusBadGateway }
func (e *TransportError) PublicMessage() string { return msgUpstream }

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *StatusError) ErrorCode() string     { return codeUpstream }
func (e *StatusError) ErrorStatus() int      { return http.StatusBadGateway }
func (e *StatusError) PublicMessage() string { return msgUpstream }

// PayloadError reports a response body that could not be decoded into the
// expected shape.
type PayloadError struct {
	Op  string
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: malformed payload: %v", e.Op, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

func (e *PayloadError) ErrorCode() string     { return codeUpstream }
func (e *PayloadError) ErrorStatus() int      { return http.StatusBadGateway }
func (e *PayloadError) PublicMessage() string { return msgUpstream }

// IsUpstreamFailure reports whether err is a transport, status or payload
// failure from the ticket API.
func IsUpstreamFailure(err error) bool {
	var (
		transportErr *TransportError
		statusErr    *StatusError
		payloadErr   *PayloadError
	)
	return errors.As(err, &transportErr) || errors.As(err, &statusErr) || errors.As(err, &payloadErr)
}
