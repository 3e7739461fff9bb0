package gigaset

import (
	"errors"
	"time"

	"github.com/matthsc/gigaset-elements-api/internal/archive"
	"github.com/matthsc/gigaset-elements-api/internal/config"
	"github.com/matthsc/gigaset-elements-api/internal/events"
	"github.com/matthsc/gigaset-elements-api/internal/model"
	"github.com/matthsc/gigaset-elements-api/internal/session"
	"github.com/matthsc/gigaset-elements-api/internal/timestamp"
	"github.com/matthsc/gigaset-elements-api/internal/transport"
)

// Domain types.
type (
	BaseStation  = model.BaseStation
	Endnode      = model.Endnode
	ElementRoot  = model.ElementRoot
	Subelement   = model.Subelement
	Event        = model.Event
	EventDetail  = model.EventDetail
	EventPage    = model.EventPage
	Command      = model.Command
	SystemHealth = model.SystemHealth
)

// Commands understood by actuators such as plugs and sirens.
var (
	CommandOn  = model.CommandOn
	CommandOff = model.CommandOff
)

// Timestamp is a point in time given either as a time.Time or as epoch
// milliseconds. The zero Timestamp means "not given".
type Timestamp = timestamp.Value

// Time converts t to a Timestamp.
func Time(t time.Time) Timestamp { return timestamp.Time(t) }

// Epoch wraps epoch milliseconds. Fractions are truncated toward the past.
func Epoch(ms float64) Timestamp { return timestamp.Epoch(ms) }

// MaxBatchSize is the largest number of events the cloud returns per request.
const MaxBatchSize = events.MaxBatchSize

// Errors returned by the client.
type (
	// NetworkError means no HTTP response was received.
	NetworkError = transport.NetworkError
	// EndpointError carries a response with a status outside 2xx.
	EndpointError = transport.EndpointError
	// InvalidTimestampError names the rejected timestamp.
	InvalidTimestampError = timestamp.InvalidError
)

var (
	// ErrInvalidTimestamp matches every InvalidTimestampError.
	ErrInvalidTimestamp = timestamp.ErrInvalid
	// ErrNegativeInterval is returned for a negative authorize interval.
	ErrNegativeInterval = session.ErrNegativeInterval
	// ErrNoArchive is returned by Archive when no archive path is set.
	ErrNoArchive = errors.New("gigaset: no archive path configured")
)

// Config is the file and environment configuration read by FromEnv and
// FromFile.
type Config = config.Config

// Archive is a local SQLite store of events.
type Archive = archive.Store
