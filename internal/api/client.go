package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultTimeout is the per-attempt bound applied when none is
// configured.
const DefaultTimeout = 10 * time.Second

// Connection pool bounds. The pool is shared by all calls on a client
// so repeated requests reuse warm connections.
const (
	maxIdleConns        = 100
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 90 * time.Second
)

// AttemptInfo describes the outcome of one attempt. It is passed to
// the attempt hook for diagnostics and metrics; it never influences
// control flow.
type AttemptInfo struct {
	RequestID  string
	Method     string
	Path       string
	Attempt    int // 0-based
	StatusCode int // 0 when the failure happened below HTTP
	Duration   time.Duration
	Err        *RequestError // nil on success
	NextDelay  time.Duration // > 0 when a retry is scheduled
}

// Client is the HTTP API client. It owns the connection pool and the
// retry engine; one instance is intended to be shared by many
// concurrent calls.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	retry      *RetryConfig
	limiter    *rate.Limiter
	onAttempt  func(AttemptInfo)
}

// Option configures the API client.
type Option func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg *RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithHTTPClient sets a custom HTTP client. The per-attempt timeout is
// still enforced through context deadlines.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLimiter installs a client-side rate limiter gating attempt
// starts.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithAttemptHook installs a callback invoked after every attempt.
func WithAttemptHook(hook func(AttemptInfo)) Option {
	return func(c *Client) {
		c.onAttempt = hook
	}
}

// New creates a new API client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	c := &Client{
		apiKey:  apiKey,
		timeout: DefaultTimeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        maxIdleConns,
				MaxIdleConnsPerHost: maxIdleConnsPerHost,
				IdleConnTimeout:     idleConnTimeout,
			},
		},
		retry: DefaultRetryConfig(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	return c, nil
}

// CloseIdleConnections drains the connection pool.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// do runs the attempt loop for one logical request: at most
// MaxRetries+1 attempts, each bounded by the per-attempt timeout, with
// classified failures deciding retryability and delay.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Kind: KindValidation, Message: "failed to encode request body", Err: err}
		}
		payload = data
	}

	requestID := uuid.NewString()

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return ClassifyTransport(err)
			}
		}

		start := time.Now()
		status, reqErr := c.attempt(ctx, method, path, requestID, payload, result)
		duration := time.Since(start)

		if reqErr == nil {
			c.emit(AttemptInfo{
				RequestID: requestID, Method: method, Path: path,
				Attempt: attempt, StatusCode: status, Duration: duration,
			})
			return nil
		}

		if !c.retry.ShouldRetry(reqErr, attempt) {
			c.emit(AttemptInfo{
				RequestID: requestID, Method: method, Path: path,
				Attempt: attempt, StatusCode: status, Duration: duration, Err: reqErr,
			})
			return reqErr
		}

		delay := c.retry.DelayFor(reqErr, attempt)
		c.emit(AttemptInfo{
			RequestID: requestID, Method: method, Path: path,
			Attempt: attempt, StatusCode: status, Duration: duration,
			Err: reqErr, NextDelay: delay,
		})

		if err := c.retry.Wait(ctx, delay); err != nil {
			// Caller canceled during backoff; no further attempts.
			return &RequestError{Kind: KindUnknown, Message: "canceled during backoff", Err: err}
		}
	}
}

// attempt performs exactly one network attempt inside its own timeout
// scope. The scope is torn down on every exit path.
func (c *Client) attempt(ctx context.Context, method, path, requestID string, payload []byte, result any) (int, *RequestError) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, &RequestError{Kind: KindUnknown, Message: "failed to create request", Err: err}
	}

	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, ClassifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return resp.StatusCode, &RequestError{
					Kind:       KindUnknown,
					Message:    "failed to decode response",
					StatusCode: resp.StatusCode,
					Err:        err,
				}
			}
		}
		return resp.StatusCode, nil
	}

	return resp.StatusCode, ClassifyResponse(resp)
}

func (c *Client) emit(info AttemptInfo) {
	if c.onAttempt != nil {
		c.onAttempt(info)
	}
}
