package guardian

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment variables read as fallbacks when the corresponding
// setting is not supplied explicitly.
const (
	EnvAPIKey  = "GUARDIAN_API_KEY"
	EnvBaseURL = "GUARDIAN_BASE_URL"
)

// Defaults applied when neither explicit configuration nor the
// environment provides a value.
const (
	DefaultBaseURL    = "http://localhost:8000"
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
)

// Config is the resolved, immutable client configuration. A client
// holds exactly one Config at a time; Reconfigure swaps it atomically.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Debug      bool
}

// resolveConfig merges explicit settings, environment fallbacks, and
// defaults, in that precedence order, and validates the result. It
// never touches the network; a missing API key fails here, before any
// attempt.
func resolveConfig(apiKey string, cfg *clientConfig) (Config, error) {
	env := cfg.env
	if env == nil {
		env = os.Getenv
	}

	resolved := Config{
		APIKey:     apiKey,
		BaseURL:    cfg.baseURL,
		Timeout:    cfg.timeout,
		MaxRetries: cfg.maxRetries,
		Debug:      cfg.debug,
	}

	if resolved.APIKey == "" {
		resolved.APIKey = cfg.apiKey
	}
	if resolved.APIKey == "" {
		resolved.APIKey = env(EnvAPIKey)
	}
	if resolved.APIKey == "" {
		return Config{}, newValidationError(ErrMissingAPIKey)
	}

	if resolved.BaseURL == "" {
		resolved.BaseURL = env(EnvBaseURL)
	}
	if resolved.BaseURL == "" {
		resolved.BaseURL = DefaultBaseURL
	}
	resolved.BaseURL = strings.TrimRight(resolved.BaseURL, "/")

	if resolved.Timeout == 0 {
		resolved.Timeout = DefaultTimeout
	}
	if resolved.Timeout < 0 {
		return Config{}, &Error{Kind: KindValidation, Message: fmt.Sprintf("timeout must be positive, got %v", resolved.Timeout)}
	}

	if resolved.MaxRetries < 0 {
		if cfg.maxRetries == -1 {
			resolved.MaxRetries = DefaultMaxRetries
		} else {
			return Config{}, &Error{Kind: KindValidation, Message: fmt.Sprintf("maxRetries must be >= 0, got %d", cfg.maxRetries)}
		}
	}

	return resolved, nil
}
