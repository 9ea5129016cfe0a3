package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fastRetry is a schedule tight enough for tests while keeping the
// exponential shape.
func fastRetry(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     0,
	}
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	client, err := New("test-key", append([]Option{WithBaseURL(baseURL)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New("", WithBaseURL("http://example.com")); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New("test-key"); err == nil {
		t.Error("expected error for missing base URL")
	}
}

func TestClient_Analyze_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1/analyze" {
			t.Errorf("path = %s, want /v1/analyze", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("X-API-Key = %q, want test-key", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("X-Request-ID header missing")
		}

		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Text != "suspicious text" {
			t.Errorf("text = %q", req.Text)
		}
		if req.Config != nil {
			t.Error("config should be omitted when no options are set")
		}

		json.NewEncoder(w).Encode(AnalyzeResponse{
			RequestID: "req_abc123",
			RiskScore: 72,
			ThreatsDetected: []Threat{
				{Category: "phishing", ConfidenceScore: 0.93, Details: "credential lure"},
			},
			Metadata: map[string]any{"language": "en"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	resp, err := client.Analyze(context.Background(), AnalyzeRequest{Text: "suspicious text"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if resp.RequestID != "req_abc123" {
		t.Errorf("RequestID = %q", resp.RequestID)
	}
	if resp.RiskScore != 72 {
		t.Errorf("RiskScore = %v, want 72", resp.RiskScore)
	}
	if len(resp.ThreatsDetected) != 1 || resp.ThreatsDetected[0].Category != "phishing" {
		t.Errorf("ThreatsDetected = %+v", resp.ThreatsDetected)
	}
}

func TestClient_RetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, `{"detail": "boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, WithRetryConfig(fastRetry(2)))

	_, err := client.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	if err == nil {
		t.Fatal("expected error")
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T", err)
	}
	if reqErr.Kind != KindServer {
		t.Errorf("Kind = %s, want %s", reqErr.Kind, KindServer)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3 (maxRetries+1)", got)
	}
}

func TestClient_ZeroRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, `{"detail": "boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, WithRetryConfig(fastRetry(0)))

	if _, err := client.Analyze(context.Background(), AnalyzeRequest{Text: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, `{"detail": "not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, WithRetryConfig(fastRetry(5)))

	_, err := client.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Kind != KindClient {
		t.Fatalf("error = %v, want client_error", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1 regardless of retry budget", got)
	}
}

func TestClient_RetryThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			http.Error(w, `{"detail": "flaky"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(AnalyzeResponse{RequestID: "req_ok", RiskScore: 1})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, WithRetryConfig(fastRetry(2)))

	resp, err := client.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if resp.RequestID != "req_ok" {
		t.Errorf("RequestID = %q", resp.RequestID)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestClient_RetryAfterHintHonored(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			http.Error(w, `{"detail": "rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(AnalyzeResponse{RequestID: "req_ok"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, WithRetryConfig(fastRetry(1)))

	start := time.Now()
	if _, err := client.Analyze(context.Background(), AnalyzeRequest{Text: "x"}); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("elapsed = %v, the 1s server hint should override the %v schedule", elapsed, time.Millisecond)
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read and
		// can observe the client disconnect; otherwise the request
		// context is never canceled and Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(t, server.URL,
		WithTimeout(50*time.Millisecond),
		WithRetryConfig(fastRetry(0)),
	)

	start := time.Now()
	_, err := client.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	elapsed := time.Since(start)

	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Kind != KindTimeout {
		t.Fatalf("error = %v, want timeout", err)
	}
	if elapsed > time.Second {
		t.Errorf("elapsed = %v, the attempt timer should fire at ~50ms", elapsed)
	}
}

func TestClient_CancelDuringBackoff(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, `{"detail": "boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, WithRetryConfig(&RetryConfig{
		MaxRetries: 3,
		BaseDelay:  5 * time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.Analyze(ctx, AnalyzeRequest{Text: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("elapsed = %v, cancellation should abort the backoff wait", elapsed)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1 (no retries after cancellation)", got)
	}
}

func TestClient_AttemptHook(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			http.Error(w, `{"detail": "flaky"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(AnalyzeResponse{RequestID: "req_ok"})
	}))
	defer server.Close()

	var mu sync.Mutex
	var events []AttemptInfo
	client := newTestClient(t, server.URL,
		WithRetryConfig(fastRetry(1)),
		WithAttemptHook(func(info AttemptInfo) {
			mu.Lock()
			events = append(events, info)
			mu.Unlock()
		}),
	)

	if _, err := client.Analyze(context.Background(), AnalyzeRequest{Text: "x"}); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	first, second := events[0], events[1]
	if first.Attempt != 0 || first.Err == nil || first.NextDelay <= 0 {
		t.Errorf("first event = %+v, want failed attempt 0 with a scheduled delay", first)
	}
	if first.RequestID == "" || first.RequestID != second.RequestID {
		t.Error("events of one call should share a request ID")
	}
	if second.Attempt != 1 || second.Err != nil || second.NextDelay != 0 {
		t.Errorf("second event = %+v, want successful attempt 1", second)
	}
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			t.Errorf("path = %s, want /healthz", r.URL.Path)
		}
		if r.Method != "GET" {
			t.Errorf("method = %s, want GET", r.Method)
		}
		json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	resp, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q, want ok", resp.Status)
	}
}
