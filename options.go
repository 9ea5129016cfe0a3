package guardian

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// clientConfig holds configuration for the client before resolution.
// maxRetries uses -1 as "unset" so an explicit zero survives the
// precedence chain.
type clientConfig struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	maxRetries int
	debug      bool

	env         func(string) string
	sink        DebugSink
	httpClient  *http.Client
	registry    prometheus.Registerer
	limiter     *rate.Limiter
	redactPII   bool
	backoffBase time.Duration
	backoffCap  time.Duration
	jitter      float64
	jitterSet   bool
}

func newClientConfig() *clientConfig {
	return &clientConfig{maxRetries: -1}
}

// Option configures the client.
type Option func(*clientConfig)

// AnalyzeOption configures a single Analyze call.
type AnalyzeOption func(*analyzeConfig)

// analyzeConfig holds per-call options. Fields are only serialized when
// set, so an option-free call sends no config object at all.
type analyzeConfig struct {
	modelVersion   string
	complianceMode string
}

// WithAPIKey sets the API key. The argument to New takes precedence;
// this is mainly useful with Reconfigure.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithBaseURL sets the endpoint root. A trailing slash is stripped
// during resolution.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithMaxRetries sets the retry budget: the number of additional
// attempts after the first. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) {
		c.maxRetries = n
	}
}

// WithBackoff overrides the retry schedule's base delay and cap.
// Defaults: 500ms base, 10s cap, doubling per attempt.
func WithBackoff(base, maxDelay time.Duration) Option {
	return func(c *clientConfig) {
		c.backoffBase = base
		c.backoffCap = maxDelay
	}
}

// WithJitter sets the randomization fraction (0.0 to 1.0) applied to
// backoff delays. The default is 0.5.
func WithJitter(fraction float64) Option {
	return func(c *clientConfig) {
		c.jitter = fraction
		c.jitterSet = true
	}
}

// WithDebug enables diagnostics on a sink writing to the standard
// logger. Use WithDebugSink to direct events elsewhere.
func WithDebug() Option {
	return func(c *clientConfig) {
		c.debug = true
	}
}

// WithDebugSink enables diagnostics on a custom sink.
func WithDebugSink(sink DebugSink) Option {
	return func(c *clientConfig) {
		c.debug = true
		c.sink = sink
	}
}

// WithEnvironment replaces the environment snapshot used for
// GUARDIAN_API_KEY / GUARDIAN_BASE_URL fallbacks. The default is
// os.Getenv; tests pass a map-backed snapshot.
func WithEnvironment(env func(string) string) Option {
	return func(c *clientConfig) {
		c.env = env
	}
}

// WithHTTPClient sets a custom HTTP client. Per-attempt timeouts are
// still enforced through context deadlines.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithMetricsRegistry registers Prometheus metrics for requests,
// retries, and errors on the given registerer.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.registry = reg
	}
}

// WithRateLimit installs a client-side token-bucket limiter gating
// attempt starts. This throttles outgoing load before the server has
// to; it never affects error classification.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *clientConfig) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithPIIRedaction redacts common PII patterns (emails, phone numbers,
// IPs, credit cards, SSNs) from text before it is sent.
func WithPIIRedaction() Option {
	return func(c *clientConfig) {
		c.redactPII = true
	}
}

// WithModelVersion pins the analysis model version for one call.
func WithModelVersion(version string) AnalyzeOption {
	return func(c *analyzeConfig) {
		c.modelVersion = version
	}
}

// WithComplianceMode sets the compliance mode for one call.
func WithComplianceMode(mode string) AnalyzeOption {
	return func(c *analyzeConfig) {
		c.complianceMode = mode
	}
}
