package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sakura-poetry/poetryctl/internal/errors"
	"github.com/sakura-poetry/poetryctl/internal/log"
	"github.com/sakura-poetry/poetryctl/internal/telemetry"
	"github.com/sakura-poetry/poetryctl/internal/version"
)

// HeaderRequestID carries the per-call correlation id.
const HeaderRequestID = "X-Request-ID"

// Session is the part of the session store the gateway depends on.
type Session interface {
	Token() string
	Logout(ctx context.Context) error
}

// Request describes one call relative to the configured base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded unless it is already []byte or json.RawMessage.
	Body   any
	// Header overrides the standard headers, except Authorization, which
	// always comes from the session.
	Header http.Header
}

// Client is the single HTTP gateway every backend call goes through. It
// attaches the session token, classifies responses and runs the notice,
// teardown and navigation side effects.
type Client struct {
	cfg       Config
	session   Session
	doer      Doer
	notifier  Notifier
	navigator Navigator
	logger    *log.Logger
	hooks     []RequestHook
	breaker   *BreakerConfig
	tracer    trace.Tracer
}

// New creates a gateway. session may be nil, in which case every call is
// sent unauthenticated.
func New(cfg Config, session Session, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:     cfg,
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.session == nil {
		c.session = anonymous{}
	}
	if c.doer == nil {
		// The per-call timeout is enforced through the request context.
		c.doer = &http.Client{}
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.navigator == nil {
		c.navigator = nopNavigator{}
	}
	if c.logger == nil {
		c.logger = log.DefaultLogger()
	}
	c.logger = c.logger.With("component", "gateway")
	if c.tracer == nil {
		c.tracer = otel.GetTracerProvider().Tracer(telemetry.ScopeGateway)
	}
	if c.breaker != nil {
		c.doer = newBreakerDoer(c.doer, *c.breaker, c.logger)
	}
	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Do performs one call and returns the resolved payload: the unwrapped data
// of a success envelope, or the raw body of a 2xx response without one.
//
// Every failure is a *errors.PoetryError. Once a response has arrived the
// side effects run to completion even if ctx is cancelled.
func (c *Client) Do(ctx context.Context, r Request) (json.RawMessage, error) {
	start := time.Now()

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	ctx, span := telemetry.StartCallSpan(ctx, c.tracer, method, r.Path)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, requestID, err := c.prepare(ctx, r)
	if err != nil {
		detached := context.WithoutCancel(ctx)
		c.logger.WithError(err).WarnContext(detached, "request preparation failed",
			"method", method, "path", r.Path)
		c.notifier.Notify(detached, Notice{Level: LevelError, Message: MsgRequestFailed})
		telemetry.RecordCall(span, "", 0, "request_error", err)
		return nil, err
	}

	res := c.exchange(req)
	telemetry.RecordCall(span, requestID, res.Status, res.Outcome.String(), res.Err)

	c.logger.DebugContext(ctx, "gateway call",
		"method", req.Method,
		"path", r.Path,
		"request_id", requestID,
		"status", res.Status,
		"outcome", res.Outcome.String(),
		"duration", time.Since(start),
	)

	return c.settle(context.WithoutCancel(ctx), res)
}

// prepare builds the outgoing request. Any panic in here, including one
// raised by a hook or the session, becomes an error.
func (c *Client) prepare(ctx context.Context, r Request) (req *http.Request, requestID string, err error) {
	defer func() {
		if p := recover(); p != nil {
			req = nil
			err = requestBuildError(fmt.Errorf("panic: %v", p))
		}
	}()

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	target := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(r.Path, "/")
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := encodeBody(r.Body)
		if err != nil {
			return nil, "", requestBuildError(err)
		}
		body = bytes.NewReader(data)
	}

	req, err = http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, "", requestBuildError(err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", c.cfg.ContentType)
	}
	requestID = uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)

	for k, vs := range r.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	for _, hook := range c.hooks {
		if err := hook(req); err != nil {
			return nil, "", requestBuildError(err)
		}
	}

	// The session is the only source of credentials; set last so neither
	// caller headers nor hooks can replace it.
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Del("Authorization")
	}
	return req, requestID, nil
}

// exchange sends the request and classifies whatever comes back.
func (c *Client) exchange(req *http.Request) Result {
	resp, err := c.doer.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	limit := c.cfg.MaxBodyBytes
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return classifyTransportError(err)
	}
	if int64(len(body)) > limit {
		res := transportFailure(nil, fmt.Sprintf("response body exceeds %d bytes", limit))
		res.Status = resp.StatusCode
		if pe, ok := errors.As(res.Err); ok {
			pe.Code = errors.ErrCodeBodyTooLarge
		}
		return res
	}
	return Classify(resp.StatusCode, body)
}

// settle runs the side effects in order (notice, teardown, navigation) and
// then returns exactly one of payload or error.
func (c *Client) settle(ctx context.Context, res Result) (json.RawMessage, error) {
	if res.Notice != "" {
		c.notifier.Notify(ctx, Notice{Level: LevelError, Message: res.Notice})
	}

	if res.Expired {
		c.logger.WarnContext(ctx, "session rejected by server, logging out", "status", res.Status)
		if err := c.session.Logout(ctx); err != nil {
			c.logger.WithError(err).WarnContext(ctx, "session teardown failed")
		}
		c.navigator.NavigateToLogin(ctx)
	}

	if res.Err != nil {
		c.logger.WithError(res.Err).DebugContext(ctx, "call rejected")
		return nil, res.Err
	}
	return res.Payload, nil
}

// Call performs r and decodes the resolved payload into T. An empty or null
// payload yields the zero value.
func Call[T any](ctx context.Context, c *Client, r Request) (T, error) {
	var out T
	raw, err := c.Do(ctx, r)
	if err != nil {
		return out, err
	}
	if isNull(raw) {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, errors.NewDecodeError(fmt.Sprintf("%T", out), err)
	}
	return out, nil
}

func classifyTransportError(err error) Result {
	switch {
	case isBreakerOpen(err):
		res := transportFailure(err, "circuit breaker open, backend considered unavailable")
		if pe, ok := errors.As(res.Err); ok {
			pe.Code = errors.ErrCodeCircuitOpen
		}
		return res
	case stderrors.Is(err, context.DeadlineExceeded):
		return transportFailure(err, "request timed out")
	case stderrors.Is(err, context.Canceled):
		return transportFailure(err, "request cancelled")
	default:
		return transportFailure(err, "network error")
	}
}

func requestBuildError(cause error) *errors.PoetryError {
	return errors.Wrap(errors.KindTransport, errors.ErrCodeRequestBuild, "failed to prepare request", cause)
}

func encodeBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return json.Marshal(v)
	}
}

type anonymous struct{}

func (anonymous) Token() string { return "" }
func (anonymous) Logout(context.Context) error { return nil }
