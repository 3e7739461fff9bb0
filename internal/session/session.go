// Package session keeps a client authorized against the cloud: it performs the
// login handshake, tracks when re-authorization is due, and retries calls
// rejected with 401.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/matthsc/gigaset-elements-api/internal/endpoint"
	"github.com/matthsc/gigaset-elements-api/internal/transport"
)

// ErrNegativeInterval is returned by New for a negative reauthorization interval.
var ErrNegativeInterval = errors.New("session: reauthorization interval may not be negative")

// Transport is the slice of transport.Client the handshake needs.
type Transport interface {
	Get(ctx context.Context, uri string, dest any) error
	Post(ctx context.Context, uri string, payload transport.Payload, dest any) error
	Log(parts ...string)
}

// Credentials identify the cloud account.
type Credentials struct {
	Email    string
	Password string
}

// Manager tracks the authorization state of one client.
type Manager struct {
	transport Transport
	creds     Credentials
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu       sync.Mutex
	deadline time.Time // zero: never due
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger sets the logger for diagnostics. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// New creates a Manager. A positive interval makes authorization due
// immediately and again interval after each successful Authorize; zero
// disables automatic authorization.
func New(t Transport, creds Credentials, interval time.Duration, opts ...Option) (*Manager, error) {
	if interval < 0 {
		return nil, ErrNegativeInterval
	}
	m := &Manager{
		transport: t,
		creds:     creds,
		interval:  interval,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if interval > 0 {
		m.deadline = m.now()
	}
	return m, nil
}

// NeedsAuth reports whether authorization is due.
func (m *Manager) NeedsAuth() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.deadline.IsZero() && !m.now().Before(m.deadline)
}

// Deadline returns when authorization is next due, or the zero time if
// automatic authorization is disabled.
func (m *Manager) Deadline() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deadline
}

// Authorize logs in and confirms the session, storing the session cookie
// in the transport's jar. Transport errors are returned unmodified.
func (m *Manager) Authorize(ctx context.Context) error {
	form := url.Values{
		"email":    {m.creds.Email},
		"password": {m.creds.Password},
	}
	if err := m.transport.Post(ctx, endpoint.Login, transport.Form(form), nil); err != nil {
		return err
	}
	if err := m.transport.Get(ctx, endpoint.Auth, nil); err != nil {
		return err
	}

	if m.interval > 0 {
		m.mu.Lock()
		m.deadline = m.now().Add(m.interval)
		m.mu.Unlock()
	}
	m.logger.Debug("authorized", "component", "session", "interval", m.interval)
	return nil
}

// Call runs op on behalf of m. It authorizes first when authorization is
// due, and on a 401 from op it authorizes and runs op exactly once more.
// All other errors, and a failure of the retry, are returned unchanged.
func Call[T any](ctx context.Context, m *Manager, op func(context.Context) (T, error)) (T, error) {
	if m.NeedsAuth() {
		if err := m.Authorize(ctx); err != nil {
			var zero T
			return zero, err
		}
	}

	v, err := op(ctx)
	if !isUnauthorized(err) {
		return v, err
	}

	m.transport.Log("Caught 401 on authorized call - calling authorize and retrying")
	m.logger.Warn("unauthorized, reauthorizing", "component", "session", "error", err)
	if err := m.Authorize(ctx); err != nil {
		var zero T
		return zero, err
	}
	return op(ctx)
}

func isUnauthorized(err error) bool {
	var epErr *transport.EndpointError
	return errors.As(err, &epErr) && epErr.StatusCode == http.StatusUnauthorized
}
