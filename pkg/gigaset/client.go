package gigaset

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"sync"

	"github.com/matthsc/gigaset-elements-api/internal/archive"
	"github.com/matthsc/gigaset-elements-api/internal/config"
	"github.com/matthsc/gigaset-elements-api/internal/endpoint"
	"github.com/matthsc/gigaset-elements-api/internal/events"
	"github.com/matthsc/gigaset-elements-api/internal/logging"
	"github.com/matthsc/gigaset-elements-api/internal/model"
	"github.com/matthsc/gigaset-elements-api/internal/session"
	"github.com/matthsc/gigaset-elements-api/internal/timestamp"
	"github.com/matthsc/gigaset-elements-api/internal/transport"
)

// Client talks to the cloud on behalf of one account.
// Safe for concurrent use.
type Client struct {
	transport *transport.Client
	session   *session.Manager
	paginator *events.Paginator
	logger    *slog.Logger

	archivePath string
	archiveMu   sync.Mutex
	archive     *Archive
}

// New creates a client for the account identified by email and password.
// No request is sent until the first call.
func New(email, password string, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var topts []transport.Option
	if o.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(o.httpClient))
	}
	if o.timeout > 0 {
		topts = append(topts, transport.WithTimeout(o.timeout))
	}
	topts = append(topts,
		transport.WithLogger(o.logger),
		transport.WithRequestLogger(o.requestLogger),
		transport.WithRateLimit(o.rateLimit, o.rateBurst),
	)
	if o.tracer != nil {
		topts = append(topts, transport.WithTracer(o.tracer))
	}
	tc, err := transport.New(topts...)
	if err != nil {
		return nil, fmt.Errorf("gigaset: %w", err)
	}

	sm, err := session.New(tc, session.Credentials{Email: email, Password: password}, o.authorizeInterval,
		session.WithClock(o.clock),
		session.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}

	c := &Client{
		transport:   tc,
		session:     sm,
		logger:      o.logger,
		archivePath: o.archivePath,
	}
	c.paginator = events.New(c.queryEvents, events.WithClock(o.clock), events.WithLogger(o.logger))
	return c, nil
}

// FromConfig creates a client from cfg. Options given here override the
// settings derived from cfg.
func FromConfig(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("gigaset: %w", err)
	}

	logger := logging.New(os.Stderr, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
	base := []Option{
		WithLogger(logger),
		WithAuthorizeInterval(cfg.Session.AuthorizeInterval),
		WithTimeout(cfg.Transport.Timeout),
		WithRateLimit(cfg.Transport.RateLimit, cfg.Transport.RateBurst),
		WithArchivePath(cfg.Archive.Path),
	}
	if cfg.Transport.RequestLog {
		base = append(base, WithRequestLogger(logging.RequestSink(logger)))
	}
	return New(cfg.Account.Email, cfg.Account.Password, append(base, opts...)...)
}

// FromEnv creates a client configured by GIGASET_* environment variables.
func FromEnv(opts ...Option) (*Client, error) {
	return FromConfig(config.Load(), opts...)
}

// FromFile creates a client from a YAML or TOML file. Environment
// variables override the file.
func FromFile(path string, opts ...Option) (*Client, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gigaset: %w", err)
	}
	return FromConfig(cfg, opts...)
}

// IsMaintenance reports whether the cloud is in maintenance mode. It does
// not need a session.
func (c *Client) IsMaintenance(ctx context.Context) (bool, error) {
	var status struct {
		IsMaintenance bool `json:"isMaintenance"`
	}
	if err := c.transport.Get(ctx, endpoint.Status, &status); err != nil {
		return false, err
	}
	return status.IsMaintenance, nil
}

// Authorize logs in and stores the session cookie.
func (c *Client) Authorize(ctx context.Context) error {
	return c.session.Authorize(ctx)
}

// NeedsAuth reports whether the next authenticated call will authorize first.
func (c *Client) NeedsAuth() bool {
	return c.session.NeedsAuth()
}

// BaseStations returns the base stations of the account with their sensors.
func (c *Client) BaseStations(ctx context.Context) ([]BaseStation, error) {
	return session.Call(ctx, c.session, func(ctx context.Context) ([]BaseStation, error) {
		var v []model.BaseStation
		err := c.transport.Get(ctx, endpoint.BaseStations, &v)
		return v, err
	})
}

// Elements returns all elements, including sensor readings such as
// temperature and humidity.
func (c *Client) Elements(ctx context.Context) (*ElementRoot, error) {
	return session.Call(ctx, c.session, func(ctx context.Context) (*ElementRoot, error) {
		var v model.ElementRoot
		if err := c.transport.Get(ctx, endpoint.Elements, &v); err != nil {
			return nil, err
		}
		return &v, nil
	})
}

// SystemHealth returns the overall health reported for the account.
func (c *Client) SystemHealth(ctx context.Context) (*SystemHealth, error) {
	return session.Call(ctx, c.session, func(ctx context.Context) (*SystemHealth, error) {
		var v model.SystemHealth
		if err := c.transport.Get(ctx, endpoint.Health, &v); err != nil {
			return nil, err
		}
		return &v, nil
	})
}

// RecentEvents returns the newest events from since onwards, newest first.
// A limit of zero or less leaves the count to the cloud.
func (c *Client) RecentEvents(ctx context.Context, since Timestamp, limit int) (*EventPage, error) {
	return c.queryEvents(ctx, since, Timestamp{}, limit)
}

// Events returns events in [from, to], newest first. A zero to leaves the
// window open-ended. When limit is positive only the newest limit events
// of the window are returned.
func (c *Client) Events(ctx context.Context, from, to Timestamp, limit int) (*EventPage, error) {
	return c.queryEvents(ctx, from, to, limit)
}

// AllEvents returns every event in [from, to], newest first, issuing as
// many requests of batchSize events as needed. A zero to means now; a
// batchSize of zero or less, or above MaxBatchSize, means MaxBatchSize.
func (c *Client) AllEvents(ctx context.Context, from, to Timestamp, batchSize int) ([]Event, error) {
	return c.paginator.FetchAll(ctx, from, to, batchSize)
}

// queryEvents validates every argument before anything is sent, including
// the authorization handshake.
func (c *Client) queryEvents(ctx context.Context, from, to Timestamp, limit int) (*EventPage, error) {
	q := url.Values{}
	fs, err := timestamp.Normalize(from)
	if err != nil {
		return nil, err
	}
	q.Set(endpoint.ParamFrom, fs)
	if !to.IsZero() {
		ts, err := timestamp.Normalize(to)
		if err != nil {
			return nil, err
		}
		q.Set(endpoint.ParamTo, ts)
	}
	if limit > 0 {
		q.Set(endpoint.ParamLimit, strconv.Itoa(limit))
	}
	uri := endpoint.Events + "?" + q.Encode()

	return session.Call(ctx, c.session, func(ctx context.Context) (*EventPage, error) {
		var page model.EventPage
		if err := c.transport.Get(ctx, uri, &page); err != nil {
			return nil, err
		}
		return &page, nil
	})
}

// SendCommand sends cmd to an endnode of a base station, e.g. CommandOn to
// a smart plug.
func (c *Client) SendCommand(ctx context.Context, baseStationID, endnodeID string, cmd Command) error {
	uri := endpoint.Command(baseStationID, endnodeID)
	_, err := session.Call(ctx, c.session, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.transport.Post(ctx, uri, transport.JSON(cmd), nil)
	})
	return err
}

// OpenArchive opens or creates an event archive at path.
func OpenArchive(ctx context.Context, path string) (*Archive, error) {
	return archive.Open(ctx, path)
}

// ArchiveEvents fetches every event in [from, to] and stores the new ones
// in a, returning how many were added. A zero from resumes at the newest
// archived event, or at the epoch for an empty archive.
func (c *Client) ArchiveEvents(ctx context.Context, a *Archive, from, to Timestamp) (int, error) {
	if from.IsZero() {
		latest, ok, err := a.Latest(ctx)
		if err != nil {
			return 0, fmt.Errorf("gigaset: %w", err)
		}
		from = timestamp.Epoch(0)
		if ok {
			from = timestamp.Epoch(float64(latest))
		}
	}

	fetched, err := c.AllEvents(ctx, from, to, MaxBatchSize)
	if err != nil {
		return 0, err
	}
	added, err := a.Put(ctx, fetched)
	if err != nil {
		return 0, fmt.Errorf("gigaset: %w", err)
	}
	c.logger.Info("archived events", "component", "archive", "fetched", len(fetched), "added", added)
	return added, nil
}

// Archive opens the archive set with WithArchivePath on first use and
// returns the same store afterwards. It fails with ErrNoArchive when no
// path is configured.
func (c *Client) Archive(ctx context.Context) (*Archive, error) {
	c.archiveMu.Lock()
	defer c.archiveMu.Unlock()
	if c.archive != nil {
		return c.archive, nil
	}
	if c.archivePath == "" {
		return nil, ErrNoArchive
	}
	a, err := archive.Open(ctx, c.archivePath)
	if err != nil {
		return nil, fmt.Errorf("gigaset: %w", err)
	}
	c.archive = a
	return a, nil
}

// SyncArchive stores every event newer than the configured archive's
// newest one and returns how many were added.
func (c *Client) SyncArchive(ctx context.Context) (int, error) {
	a, err := c.Archive(ctx)
	if err != nil {
		return 0, err
	}
	return c.ArchiveEvents(ctx, a, Timestamp{}, Timestamp{})
}

// Close releases the configured archive, if it was opened.
func (c *Client) Close() error {
	c.archiveMu.Lock()
	defer c.archiveMu.Unlock()
	if c.archive == nil {
		return nil
	}
	err := c.archive.Close()
	c.archive = nil
	return err
}
