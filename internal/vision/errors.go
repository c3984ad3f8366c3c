package vision

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

type ErrorKind string

const (
	KindServiceUnreachable ErrorKind = "ServiceUnreachable"
	KindAuthFailure        ErrorKind = "AuthFailure"
	KindRateLimited        ErrorKind = "RateLimited"
	KindUnknown            ErrorKind = "Unknown"
)

// Error is returned by Client.Classify for every upstream failure.
type Error struct {
	Kind       ErrorKind
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("custom vision: %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("custom vision: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf classifies any error coming out of a classifier call.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return kindOfTransport(err)
}

func kindOfTransport(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindServiceUnreachable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindServiceUnreachable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindServiceUnreachable
	}
	return KindUnknown
}

func kindOfStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuthFailure
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusBadGateway || code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout:
		return KindServiceUnreachable
	default:
		return KindUnknown
	}
}

// UserMessage is the client-facing text for a failed classification.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindServiceUnreachable:
		return "The image recognition service is unreachable right now. Please try again later."
	case KindAuthFailure:
		return "The server could not authenticate with the image recognition service."
	case KindRateLimited:
		return "Too many recognition requests. Please wait a moment and try again."
	default:
		return "An error occurred on the server: " + err.Error()
	}
}
