package flightapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Kind classifies a failed webhook call. The wizard shows different
// guidance for a timeout ("try again") than for an unreachable backend.
type Kind string

const (
	KindTimeout    Kind = "timeout"
	KindNetwork    Kind = "network_unreachable"
	KindHTTP       Kind = "http_error"
	KindMalformed  Kind = "malformed_response"
	KindNoResults  Kind = "no_results"
	KindValidation Kind = "validation_failed"
	KindRejected   Kind = "backend_rejected"
)

// APIError is the single error type the client returns. Status is set for
// KindHTTP, Suggestions for KindNoResults, Fields for KindValidation.
type APIError struct {
	Kind        Kind
	Status      int
	Message     string
	Suggestions []string
	Fields      map[string]string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Cause buckets the error into the classification the transcript uses:
// timeout, network-unreachable, not-found, server-error or unknown.
func (e *APIError) Cause() string {
	switch e.Kind {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network-unreachable"
	case KindHTTP:
		switch {
		case e.Status == 404:
			return "not-found"
		case e.Status >= 500:
			return "server-error"
		default:
			return "unknown"
		}
	default:
		return "unknown"
	}
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// classifyTransport maps an http.Client error onto the taxonomy.
func classifyTransport(err error) *APIError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Kind: KindTimeout, Message: "request timed out"}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &APIError{Kind: KindTimeout, Message: "request timed out"}
		}
		var netErr net.Error
		if errors.As(urlErr.Err, &netErr) && netErr.Timeout() {
			return &APIError{Kind: KindTimeout, Message: "request timed out"}
		}
		return &APIError{Kind: KindNetwork, Message: urlErr.Err.Error()}
	}

	return &APIError{Kind: KindNetwork, Message: err.Error()}
}
