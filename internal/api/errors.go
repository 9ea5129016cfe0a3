package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Kind is the closed set of failure classifications. Every failed
// request resolves to exactly one Kind; callers branch on it instead of
// inspecting status codes or error strings.
type Kind string

const (
	// KindValidation indicates invalid input that was never sent over
	// the wire.
	KindValidation Kind = "validation"
	// KindTimeout indicates an attempt exceeded its per-attempt bound.
	KindTimeout Kind = "timeout"
	// KindRateLimit indicates HTTP 429; RetryAfter carries the server's
	// wait hint when one was provided.
	KindRateLimit Kind = "rate_limit"
	// KindClient indicates a 4xx other than 429. Not retried.
	KindClient Kind = "client_error"
	// KindServer indicates a 5xx. Retried.
	KindServer Kind = "server_error"
	// KindUnknown indicates any other transport-level failure
	// (connection reset, DNS failure, unexpected status). Retried.
	KindUnknown Kind = "unknown"
)

// maxErrorBodyBytes bounds how much of an error response body is
// retained for diagnostics.
const maxErrorBodyBytes = 64 << 10

// unparseableDetail is substituted when an error body is not the
// expected JSON shape and carries no usable text.
const unparseableDetail = "unparseable error response"

// RequestError is the classified outcome of a failed attempt.
type RequestError struct {
	Kind       Kind
	Message    string
	StatusCode int           // 0 when the failure happened below HTTP
	RetryAfter time.Duration // only set for KindRateLimit
	Body       string        // raw error body, bounded
	Err        error         // underlying transport error, if any
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying transport error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the retry engine may schedule another
// attempt for this failure. Validation and non-429 client errors are
// final; everything else is transient.
func (e *RequestError) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindRateLimit, KindServer, KindUnknown:
		return true
	default:
		return false
	}
}

// ClassifyResponse maps a non-2xx HTTP response to a RequestError. The
// body is consumed; callers must not read it afterwards.
func ClassifyResponse(resp *http.Response) *RequestError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	detail := errorDetail(body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RequestError{
			Kind:       KindRateLimit,
			Message:    detail,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Body:       string(body),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &RequestError{
			Kind:       KindClient,
			Message:    detail,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	case resp.StatusCode >= 500 && resp.StatusCode < 600:
		return &RequestError{
			Kind:       KindServer,
			Message:    detail,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	default:
		return &RequestError{
			Kind:       KindUnknown,
			Message:    fmt.Sprintf("unexpected status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
}

// ClassifyTransport maps a network-level failure or cancellation to a
// RequestError.
func ClassifyTransport(err error) *RequestError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &RequestError{Kind: KindTimeout, Message: "request timed out", Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &RequestError{Kind: KindTimeout, Message: "request timed out", Err: err}
	case errors.Is(err, context.Canceled):
		return &RequestError{Kind: KindUnknown, Message: "request canceled", Err: err}
	default:
		return &RequestError{Kind: KindUnknown, Message: "request failed", Err: err}
	}
}

// errorDetail extracts the server's {"detail": ...} message, falling
// back to the raw body text, then to a placeholder.
func errorDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return unparseableDetail
}

// parseRetryAfter parses a Retry-After header given in delay-seconds.
// Absent, unparseable, or non-positive values yield no hint; a zero
// result makes the engine fall back to its own schedule.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds <= 0 {
		return 0
	}
	d := time.Duration(seconds) * time.Second
	if d > time.Hour {
		d = time.Hour
	}
	return d
}
