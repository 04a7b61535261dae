package gateway

import (
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/sakura-poetry/poetryctl/internal/errors"
	"github.com/sakura-poetry/poetryctl/internal/log"
	"github.com/sakura-poetry/poetryctl/internal/telemetry"
)

const (
	// DefaultBaseURL is the backend address used when none is configured.
	DefaultBaseURL = "http://localhost:8080"
	// DefaultTimeout bounds every call, including reading the body.
	DefaultTimeout = 15 * time.Second
	// DefaultContentType is sent with every request body.
	DefaultContentType = "application/json"
	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes = 32 << 20
)

// Config is fixed for the lifetime of a Client.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	ContentType string
	// MaxBodyBytes is the largest response body accepted. A longer body is
	// rejected as a transport failure rather than truncated.
	MaxBodyBytes int64
}

// DefaultConfig returns the stock backend settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Timeout:      DefaultTimeout,
		ContentType:  DefaultContentType,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.ContentType == "" {
		c.ContentType = d.ContentType
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	return c
}

func (c Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid, "invalid api base url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid, "api base url must use http or https", nil)
	}
	if u.Host == "" {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid, "api base url has no host", nil)
	}
	return nil
}

// Doer sends a single HTTP request. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestHook runs on every outgoing request after the standard headers are
// set. An error (or panic) rejects the call before anything is sent. Changes
// to Authorization are overwritten from the session.
type RequestHook func(req *http.Request) error

// Option configures a Client.
type Option func(*Client)

// WithNotifier sets where user-visible notices go.
func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithNavigator sets the login redirect side-channel.
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		c.navigator = n
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.doer = hc
	}
}

// WithDoer replaces the underlying transport with any Doer.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		c.doer = d
	}
}

// WithRequestHook appends a hook run during the request phase.
func WithRequestHook(h RequestHook) Option {
	return func(c *Client) {
		c.hooks = append(c.hooks, h)
	}
}

// WithCircuitBreaker wraps the transport in a circuit breaker.
func WithCircuitBreaker(cfg BreakerConfig) Option {
	return func(c *Client) {
		c.breaker = &cfg
	}
}

// WithTracerProvider records a span per call with tp. The global provider is
// used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(telemetry.ScopeGateway)
	}
}
