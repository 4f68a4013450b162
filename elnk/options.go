package elnk

import (
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the elnk.pro API root
	DefaultBaseURL = "https://elnk.pro/api"
	// DefaultShortBaseURL is where short links resolve when no custom domain is set
	DefaultShortBaseURL = "https://elnk.pro"
	// DefaultTimeout bounds every request
	DefaultTimeout = 30 * time.Second
	// DefaultConcurrency bounds bulk fan-out
	DefaultConcurrency = 5

	defaultUserAgent = "elnk-go"
)

// Config holds the connection settings for a Client. Only APIKey is required.
type Config struct {
	APIKey    string        `envconfig:"API_KEY"`
	DomainID  string        `envconfig:"DOMAIN_ID"`
	ProjectID string        `envconfig:"PROJECT_ID"`
	Timeout   time.Duration `envconfig:"TIMEOUT"`
	BaseURL   string        `envconfig:"BASE_URL"`
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient   *http.Client
	timeout      time.Duration
	userAgent    string
	metrics      *Metrics
	concurrency  int
	shortBaseURL string
}

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is kept as is
// and, when set, is the timeout reported by Settings.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithTimeout overrides Config.Timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithMetrics records every request in m.
func WithMetrics(m *Metrics) Option {
	return func(o *clientOptions) {
		o.metrics = m
	}
}

// WithConcurrency bounds the number of in-flight requests of bulk operations.
func WithConcurrency(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithShortBaseURL sets the origin used by ConstructShortURL.
func WithShortBaseURL(base string) Option {
	return func(o *clientOptions) {
		if base != "" {
			o.shortBaseURL = strings.TrimRight(base, "/")
		}
	}
}
