// Package events fetches every event of a time window by paging backwards
// through the events endpoint.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/matthsc/gigaset-elements-api/internal/model"
	"github.com/matthsc/gigaset-elements-api/internal/timestamp"
)

// MaxBatchSize is the largest limit the events endpoint accepts.
const MaxBatchSize = 500

// Query returns at most limit events in [from, to], newest first.
type Query func(ctx context.Context, from, to timestamp.Value, limit int) (*model.EventPage, error)

// Paginator issues repeated Query calls until a window is exhausted.
// It holds no per-call state and may be used concurrently.
type Paginator struct {
	query  Query
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Paginator.
type Option func(*Paginator)

// WithClock replaces time.Now as the default upper bound.
func WithClock(now func() time.Time) Option {
	return func(p *Paginator) {
		p.now = now
	}
}

// WithLogger sets the logger for ordering warnings. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Paginator) {
		p.logger = l
	}
}

// New creates a Paginator over q.
func New(q Query, opts ...Option) *Paginator {
	p := &Paginator{
		query:  q,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchAll returns all events in [from, to], newest first. A zero to means
// now. batchSize is clamped to MaxBatchSize; zero or negative selects it.
// On any error the events gathered so far are discarded.
func (p *Paginator) FetchAll(ctx context.Context, from, to timestamp.Value, batchSize int) ([]model.Event, error) {
	if to.IsZero() {
		to = timestamp.Time(p.now())
	}
	if batchSize <= 0 || batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}
	if _, err := timestamp.Normalize(from); err != nil {
		return nil, err
	}
	if _, err := timestamp.Normalize(to); err != nil {
		return nil, err
	}

	var all []model.Event
	for {
		page, err := p.query(ctx, from, to, batchSize)
		if err != nil {
			return nil, err
		}
		var batch []model.Event
		if page != nil {
			batch = page.Events
		}

		if len(batch) > 0 {
			oldest, err := p.checkOrder(batch)
			if err != nil {
				return nil, err
			}
			all = append(all, batch...)
			to = timestamp.Epoch(float64(oldest - 1))
		}

		if len(batch) < batchSize {
			return all, nil
		}
	}
}

// checkOrder parses every timestamp of batch and returns the last one.
// Batches out of descending order are kept as received.
func (p *Paginator) checkOrder(batch []model.Event) (int64, error) {
	var prev int64
	for i, e := range batch {
		ts, err := e.Timestamp()
		if err != nil {
			return 0, err
		}
		if i > 0 && ts > prev {
			p.logger.Warn("events out of order", "component", "events", "index", i, "id", e.ID, "ts", ts, "previous_ts", prev)
		}
		prev = ts
	}
	return prev, nil
}
