package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func responseWith(status int, body string, headers map[string]string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		headers    map[string]string
		wantKind   Kind
		wantDetail string
		wantHint   time.Duration
	}{
		{
			name:     "429 with Retry-After",
			status:   429,
			body:     `{"detail": "rate limit exceeded"}`,
			headers:  map[string]string{"Retry-After": "5"},
			wantKind: KindRateLimit, wantDetail: "rate limit exceeded", wantHint: 5 * time.Second,
		},
		{
			name:     "429 without Retry-After",
			status:   429,
			body:     `{"detail": "slow down"}`,
			wantKind: KindRateLimit, wantDetail: "slow down", wantHint: 0,
		},
		{
			name:     "429 with unparseable Retry-After",
			status:   429,
			body:     `{"detail": "slow down"}`,
			headers:  map[string]string{"Retry-After": "soon"},
			wantKind: KindRateLimit, wantDetail: "slow down", wantHint: 0,
		},
		{
			name:     "429 with zero Retry-After treated as no hint",
			status:   429,
			body:     `{"detail": "slow down"}`,
			headers:  map[string]string{"Retry-After": "0"},
			wantKind: KindRateLimit, wantDetail: "slow down", wantHint: 0,
		},
		{
			name:     "404 is a client error",
			status:   404,
			body:     `{"detail": "not found"}`,
			wantKind: KindClient, wantDetail: "not found",
		},
		{
			name:     "400 is a client error",
			status:   400,
			body:     `{"detail": "bad request"}`,
			wantKind: KindClient, wantDetail: "bad request",
		},
		{
			name:     "500 is a server error",
			status:   500,
			body:     `{"detail": "internal"}`,
			wantKind: KindServer, wantDetail: "internal",
		},
		{
			name:     "503 is a server error",
			status:   503,
			body:     `{"detail": "unavailable"}`,
			wantKind: KindServer, wantDetail: "unavailable",
		},
		{
			name:     "redirect is unknown",
			status:   302,
			wantKind: KindUnknown, wantDetail: "unexpected status 302",
		},
		{
			name:     "non-JSON body falls back to raw text",
			status:   500,
			body:     "upstream exploded",
			wantKind: KindServer, wantDetail: "upstream exploded",
		},
		{
			name:     "empty body gets placeholder detail",
			status:   500,
			wantKind: KindServer, wantDetail: unparseableDetail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyResponse(responseWith(tt.status, tt.body, tt.headers))

			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", got.Kind, tt.wantKind)
			}
			if got.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", got.StatusCode, tt.status)
			}
			if tt.wantDetail != "" && got.Message != tt.wantDetail {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantDetail)
			}
			if got.RetryAfter != tt.wantHint {
				t.Errorf("RetryAfter = %v, want %v", got.RetryAfter, tt.wantHint)
			}
		})
	}
}

type fakeTimeoutError struct{}

func (fakeTimeoutError) Error() string   { return "i/o timeout" }
func (fakeTimeoutError) Timeout() bool   { return true }
func (fakeTimeoutError) Temporary() bool { return true }

func TestClassifyTransport(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
	}{
		{"context deadline", context.DeadlineExceeded, KindTimeout},
		{"net timeout", fakeTimeoutError{}, KindTimeout},
		{"context canceled", context.Canceled, KindUnknown},
		{"connection refused", errors.New("connection refused"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyTransport(tt.err)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", got.Kind, tt.wantKind)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error should wrap the original")
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{" 10 ", 10 * time.Second},
		{"0", 0},
		{"-3", 0},
		{"soon", 0},
		{"999999", time.Hour}, // capped
	}

	for _, tt := range tests {
		if got := parseRetryAfter(tt.value); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestRequestError_Retryable(t *testing.T) {
	retryable := []Kind{KindTimeout, KindRateLimit, KindServer, KindUnknown}
	for _, kind := range retryable {
		if !(&RequestError{Kind: kind}).Retryable() {
			t.Errorf("%s should be retryable", kind)
		}
	}
	final := []Kind{KindClient, KindValidation}
	for _, kind := range final {
		if (&RequestError{Kind: kind}).Retryable() {
			t.Errorf("%s should not be retryable", kind)
		}
	}
}

func TestRequestError_Error(t *testing.T) {
	withStatus := &RequestError{Kind: KindClient, Message: "not found", StatusCode: 404}
	if got := withStatus.Error(); got != "client_error: not found (status 404)" {
		t.Errorf("Error() = %q", got)
	}

	cause := errors.New("connection reset")
	wrapped := &RequestError{Kind: KindUnknown, Message: "request failed", Err: cause}
	if got := wrapped.Error(); got != "unknown: request failed: connection reset" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("Unwrap should expose the cause")
	}
}
