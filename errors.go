package guardian

import (
	"errors"
	"fmt"
	"time"

	"github.com/guardianai/client-go/internal/api"
)

// Kind classifies a failed call. It is the closed taxonomy callers
// switch on; every *Error carries exactly one Kind.
type Kind = api.Kind

// Error kinds.
const (
	// KindValidation indicates bad input that was never sent over the wire.
	KindValidation = api.KindValidation
	// KindTimeout indicates an attempt exceeded its per-attempt bound.
	KindTimeout = api.KindTimeout
	// KindRateLimit indicates HTTP 429 with an optional server wait hint.
	KindRateLimit = api.KindRateLimit
	// KindClient indicates a non-retryable 4xx other than 429.
	KindClient = api.KindClient
	// KindServer indicates a retryable 5xx.
	KindServer = api.KindServer
	// KindUnknown indicates any other transport failure.
	KindUnknown = api.KindUnknown
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrMissingAPIKey is returned when no API key can be resolved from
	// explicit configuration or the environment.
	ErrMissingAPIKey = errors.New("missing API key: provide one or set GUARDIAN_API_KEY")

	// ErrEmptyText is returned when Analyze is called with empty text.
	ErrEmptyText = errors.New("text must be a non-empty string")

	// ErrTextTooLong is returned when the input exceeds MaxTextBytes.
	ErrTextTooLong = errors.New("text exceeds maximum length")

	// ErrClientClosed is returned when operations are attempted on a
	// closed client.
	ErrClientClosed = errors.New("client has been closed")

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// GuardianError is implemented by all SDK errors.
type GuardianError interface {
	error
	GuardianError() // marker method
}

// Error is the typed failure a call resolves to. Only the final
// classified failure crosses the SDK boundary; intermediate retry
// attempts are not exposed.
type Error struct {
	// Kind discriminates the failure; payload fields below are only
	// meaningful for the kinds that set them.
	Kind Kind
	// Message is a human-readable description, usually the server's
	// detail string.
	Message string
	// StatusCode is the HTTP status, or 0 for sub-HTTP failures.
	StatusCode int
	// RetryAfter is the server's rate-limit wait hint. Only set for
	// KindRateLimit. A zero value means no hint was provided; the SDK
	// does not distinguish an explicit Retry-After of 0 from an absent
	// header.
	RetryAfter time.Duration
	// Body is the raw error response body, when one was received.
	Body string
	// Err is the underlying transport error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("guardian: %s: %s (status %d)", e.Kind, e.Message, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("guardian: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("guardian: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying transport error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel and kind matching.
func (e *Error) Is(target error) bool {
	if e.Kind == KindRateLimit && target == ErrRateLimited {
		return true
	}
	if other, ok := target.(*Error); ok {
		return e.Kind == other.Kind
	}
	return false
}

// GuardianError implements the GuardianError interface.
func (e *Error) GuardianError() {}

// Retryable reports whether the SDK considered this failure transient.
// By the time the caller sees the error the retry budget is already
// spent; this is informational.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindRateLimit, KindServer, KindUnknown:
		return true
	default:
		return false
	}
}

// newValidationError builds a KindValidation error around a sentinel so
// both errors.Is(err, sentinel) and Kind matching work.
func newValidationError(sentinel error) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: sentinel.Error(),
		Err:     sentinel,
	}
}

// wrapError converts internal transport errors to the public taxonomy.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		return &Error{
			Kind:       reqErr.Kind,
			Message:    reqErr.Message,
			StatusCode: reqErr.StatusCode,
			RetryAfter: reqErr.RetryAfter,
			Body:       reqErr.Body,
			Err:        reqErr.Err,
		}
	}

	return err
}
