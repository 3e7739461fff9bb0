// Package transport performs the JSON GET/POST requests of one API client,
// keeping the session cookies of that client in its own jar.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

const tracerName = "github.com/matthsc/gigaset-elements-api/internal/transport"

// NetworkError is returned when no response was obtained.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// EndpointError represents a non-2xx HTTP response.
type EndpointError struct {
	StatusCode int
	Method     string
	URI        string
	Body       string
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URI, e.StatusCode, e.Body)
}

// Client sends requests on behalf of a single API client instance.
type Client struct {
	httpClient *http.Client
	jar        http.CookieJar
	timeout    time.Duration // 0: keep the dispatching client's timeout
	logf       func(string)
	logger     *slog.Logger
	limiter    *rate.Limiter
	tracer     trace.Tracer
}

// Option configures Client behavior.
type Option func(*Client)

// WithHTTPClient uses a copy of hc for dispatch. The copy's cookie jar is
// replaced by the Client's own jar. A nil hc is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		cp := *hc
		c.httpClient = &cp
	}
}

// WithTimeout sets the HTTP client timeout, overriding the timeout of a
// client passed to WithHTTPClient. Without it a client lacking a timeout
// gets 30s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger for request debug records. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRequestLogger sets the sink receiving raw request and response lines.
func WithRequestLogger(fn func(string)) Option {
	return func(c *Client) {
		if fn != nil {
			c.logf = fn
		}
	}
}

// WithRateLimit throttles outgoing requests. A zero limit disables throttling.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		if limit <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// New creates a Client with an empty cookie jar.
func New(opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("transport: cookie jar: %w", err)
	}
	c := &Client{
		httpClient: &http.Client{},
		logf:       func(string) {},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	switch {
	case c.timeout > 0:
		c.httpClient.Timeout = c.timeout
	case c.httpClient.Timeout == 0:
		c.httpClient.Timeout = defaultTimeout
	}
	c.jar = jar
	c.httpClient.Jar = jar
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c, nil
}

// Jar returns the cookie jar owned by c.
func (c *Client) Jar() http.CookieJar {
	return c.jar
}

// Log writes parts, separated by spaces, to the request logger.
func (c *Client) Log(parts ...string) {
	c.logf(strings.Join(parts, " "))
}

// Payload is the body of a POST request: either JSON or a form.
type Payload struct {
	body any
	form url.Values
}

// JSON sends v as the request body. Strings are sent verbatim, anything
// else is marshalled with a JSON content type.
func JSON(v any) Payload {
	return Payload{body: v}
}

// Form sends values form-encoded.
func Form(values url.Values) Payload {
	return Payload{form: values}
}

// Get sends a GET request and unmarshals a non-empty JSON response into dest.
func (c *Client) Get(ctx context.Context, uri string, dest any) error {
	return c.do(ctx, http.MethodGet, uri, nil, "", dest)
}

// Post sends a POST request with payload and unmarshals a non-empty JSON
// response into dest. dest may be nil.
func (c *Client) Post(ctx context.Context, uri string, payload Payload, dest any) error {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case payload.form != nil:
		body = strings.NewReader(payload.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case payload.body != nil:
		if s, ok := payload.body.(string); ok {
			body = strings.NewReader(s)
			break
		}
		b, err := json.Marshal(payload.body)
		if err != nil {
			return fmt.Errorf("transport: encode body: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, http.MethodPost, uri, body, contentType, dest)
}

// do returns *NetworkError when no response was obtained and *EndpointError
// for statuses outside [200,300).
func (c *Client) do(ctx context.Context, method, uri string, body io.Reader, contentType string, dest any) error {
	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "gigaset.http "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", uri),
			attribute.String("gigaset.request_id", requestID),
		),
	)
	defer span.End()

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return fail(&NetworkError{Err: err})
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(&NetworkError{Err: err})
		}
	}

	c.Log(method, uri)
	c.logger.Debug("request", "component", "transport", "request_id", requestID, "method", method, "uri", uri)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(&NetworkError{Err: err})
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fail(&NetworkError{Err: err})
	}

	c.Log(strconv.Itoa(resp.StatusCode), string(raw))
	c.logger.Debug("response", "component", "transport", "request_id", requestID, "status", resp.StatusCode, "bytes", len(raw))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(&EndpointError{
			StatusCode: resp.StatusCode,
			Method:     method,
			URI:        uri,
			Body:       string(raw),
		})
	}

	if len(raw) == 0 || dest == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fail(err)
	}
	return nil
}
