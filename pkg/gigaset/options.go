package gigaset

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

type options struct {
	authorizeInterval time.Duration
	requestLogger     func(string)
	httpClient        *http.Client
	timeout           time.Duration
	rateLimit         rate.Limit
	rateBurst         int
	logger            *slog.Logger
	tracer            trace.Tracer
	clock             func() time.Time
	archivePath       string
}

// Option configures a Client.
type Option func(*options)

// WithAuthorizeInterval makes the client authorize before its first call and
// again once d has passed since the last authorization. Zero (the default)
// authorizes only on explicit Authorize calls and 401 responses.
func WithAuthorizeInterval(d time.Duration) Option {
	return func(o *options) {
		o.authorizeInterval = d
	}
}

// WithRequestLogger receives every raw request line and response body.
func WithRequestLogger(fn func(string)) Option {
	return func(o *options) {
		o.requestLogger = fn
	}
}

// WithHTTPClient dispatches through a copy of hc. The client still keeps
// its own cookie jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRateLimit caps outgoing requests at limit per second.
func WithRateLimit(limit float64, burst int) Option {
	return func(o *options) {
		o.rateLimit = rate.Limit(limit)
		o.rateBurst = burst
	}
}

// WithLogger sets the logger for diagnostics. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTracer records request spans with t instead of the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithClock replaces time.Now for authorization deadlines and the default
// end of event windows.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithArchivePath sets the event archive used by Archive and SyncArchive.
func WithArchivePath(path string) Option {
	return func(o *options) {
		o.archivePath = path
	}
}

func defaultOptions() options {
	return options{
		logger: slog.Default(),
		clock:  time.Now,
	}
}
