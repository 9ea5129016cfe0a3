package guardian

import (
	"sync"
	"time"

	"github.com/guardianai/client-go/internal/api"
)

// Client is the Guardian API client. It is safe for concurrent use;
// create one per process and share it so the connection pool is
// amortized across calls.
type Client struct {
	mu       sync.RWMutex
	cfg      Config
	settings *clientConfig
	api      *api.Client
	sink     DebugSink
	metrics  *metricsCollector
	closed   bool
}

// New creates a client. An empty apiKey falls back to GUARDIAN_API_KEY
// from the environment snapshot; if neither yields a key, New fails
// with a KindValidation error before any network activity.
func New(apiKey string, opts ...Option) (*Client, error) {
	settings := newClientConfig()
	for _, opt := range opts {
		opt(settings)
	}

	cfg, err := resolveConfig(apiKey, settings)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:      cfg,
		settings: settings,
		sink:     sinkFor(cfg, settings),
	}
	if settings.registry != nil {
		c.metrics = newMetricsCollector(settings.registry)
	}

	c.api, err = buildAPIClient(cfg, settings, c.attemptHook)
	if err != nil {
		return nil, err
	}

	c.sink.Emit(Event{Time: time.Now(), Channel: ChannelLifecycle, Message: "client created"})
	return c, nil
}

// buildAPIClient creates and configures a transport client from the
// resolved config.
func buildAPIClient(cfg Config, settings *clientConfig, hook func(api.AttemptInfo)) (*api.Client, error) {
	retry := api.DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries
	if settings.backoffBase > 0 {
		retry.BaseDelay = settings.backoffBase
	}
	if settings.backoffCap > 0 {
		retry.MaxDelay = settings.backoffCap
	}
	if settings.jitterSet {
		retry.Jitter = settings.jitter
	}

	apiOpts := []api.Option{
		api.WithBaseURL(cfg.BaseURL),
		api.WithTimeout(cfg.Timeout),
		api.WithRetryConfig(retry),
		api.WithUserAgent(userAgent),
		api.WithAttemptHook(hook),
	}
	if settings.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(settings.httpClient))
	}
	if settings.limiter != nil {
		apiOpts = append(apiOpts, api.WithLimiter(settings.limiter))
	}

	return api.New(cfg.APIKey, apiOpts...)
}

// sinkFor returns the configured sink, a log-backed sink when debug is
// on without one, or the no-op sink.
func sinkFor(cfg Config, settings *clientConfig) DebugSink {
	if !cfg.Debug {
		return nopSink{}
	}
	if settings.sink != nil {
		return settings.sink
	}
	return NewLogSink(nil)
}

// attemptHook translates transport attempt outcomes into diagnostics
// events and metrics. It is invoked inline on the request path and must
// stay cheap.
func (c *Client) attemptHook(info api.AttemptInfo) {
	c.mu.RLock()
	sink := c.sink
	c.mu.RUnlock()

	c.metrics.recordAttempt(info.Path, info.Duration)

	var kind Kind
	if info.Err != nil {
		kind = info.Err.Kind
	}

	if info.NextDelay > 0 {
		c.metrics.recordRetry(info.Path, kind)
		sink.Emit(Event{
			Time:       time.Now(),
			Channel:    ChannelRetry,
			Message:    "retry scheduled",
			RequestID:  info.RequestID,
			Attempt:    info.Attempt,
			Delay:      info.NextDelay,
			Kind:       kind,
			StatusCode: info.StatusCode,
		})
		return
	}

	message := "attempt succeeded"
	if info.Err != nil {
		message = "attempt failed"
	}
	sink.Emit(Event{
		Time:       time.Now(),
		Channel:    ChannelRequest,
		Message:    message,
		RequestID:  info.RequestID,
		Attempt:    info.Attempt,
		Kind:       kind,
		StatusCode: info.StatusCode,
	})
}

// Config returns the currently resolved configuration.
func (c *Client) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Reconfigure atomically replaces the client configuration. Settings
// not overridden by opts keep their current values. Calls already in
// flight finish with the configuration they started with.
func (c *Client) Reconfigure(opts ...Option) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	next := *c.settings
	next.apiKey = c.cfg.APIKey
	next.baseURL = c.cfg.BaseURL
	next.timeout = c.cfg.Timeout
	next.maxRetries = c.cfg.MaxRetries
	next.debug = c.cfg.Debug
	for _, opt := range opts {
		opt(&next)
	}

	cfg, err := resolveConfig("", &next)
	if err != nil {
		return err
	}

	apiClient, err := buildAPIClient(cfg, &next, c.attemptHook)
	if err != nil {
		return err
	}

	old := c.api
	c.cfg = cfg
	c.settings = &next
	c.api = apiClient
	c.sink = sinkFor(cfg, &next)

	old.CloseIdleConnections()
	c.sink.Emit(Event{Time: time.Now(), Channel: ChannelLifecycle, Message: "client reconfigured"})
	return nil
}

// Close releases the connection pool. Subsequent calls fail with
// ErrClientClosed.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.api.CloseIdleConnections()
	c.sink.Emit(Event{Time: time.Now(), Channel: ChannelLifecycle, Message: "client closed"})
}

// snapshot returns the collaborators a call needs without holding the
// lock for the call's duration.
func (c *Client) snapshot() (*api.Client, *clientConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, nil, ErrClientClosed
	}
	return c.api, c.settings, nil
}
