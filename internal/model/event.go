package model

import (
	"time"

	"github.com/matthsc/gigaset-elements-api/internal/timestamp"
)

// EventPage is the response of the events endpoint.
type EventPage struct {
	Events    []Event `json:"events"`
	HomeState string  `json:"home_state"`
}

// Event is a timestamped occurrence reported by a device.
type Event struct {
	ID         string       `json:"id"`
	State      string       `json:"state"`
	TS         string       `json:"ts"` // epoch milliseconds
	Type       string       `json:"type"`
	O          *EventDetail `json:"o,omitempty"`
	SourceID   string       `json:"source_id"`
	SourceName string       `json:"source_name,omitempty"`
	SourceType string       `json:"source_type"`
	StatePre   string       `json:"state_pre"`
	Parents    []string     `json:"parents,omitempty"`
}

// EventDetail is the nested "o" payload. Its fields depend on the event type.
type EventDetail struct {
	Consumed                string              `json:"consumed,omitempty"`
	Reason                  string              `json:"reason,omitempty"`
	FrontendTags            *FrontendTags       `json:"frontendTags,omitempty"`
	FriendlyName            string              `json:"friendly_name,omitempty"`
	Delay                   string              `json:"delay,omitempty"`
	ID                      string              `json:"id,omitempty"`
	Type                    string              `json:"type,omitempty"`
	Room                    *Room               `json:"room,omitempty"`
	FactoryType             string              `json:"factoryType,omitempty"`
	UmosConfiguredType      *UmosConfiguredType `json:"umosConfiguredType,omitempty"`
	Dialable                *bool               `json:"dialable,omitempty"`
	LineType                string              `json:"line_type,omitempty"`
	LineIndex               *int                `json:"line_index,omitempty"`
	CallType                string              `json:"call_type,omitempty"`
	ClipType                string              `json:"clip_type,omitempty"`
	Clip                    string              `json:"clip,omitempty"`
	BasestationFriendlyName string              `json:"basestationFriendlyName,omitempty"`
	ConfigurationLoadedID   string              `json:"configurationLoadedId,omitempty"`
	ModeBefore              string              `json:"modeBefore,omitempty"`
	ModeAfter               string              `json:"modeAfter,omitempty"`
	UserID                  string              `json:"userId,omitempty"`
}

// Timestamp parses TS.
func (e Event) Timestamp() (int64, error) {
	return timestamp.Parse(e.TS)
}

// Time returns TS as a time, or the zero time if TS is malformed.
func (e Event) Time() time.Time {
	ms, err := e.Timestamp()
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// DisplayName returns the best human-readable name of the event source.
func (e Event) DisplayName() string {
	switch {
	case e.SourceName != "":
		return NormalizeName(e.SourceName)
	case e.O != nil && e.O.FriendlyName != "":
		return NormalizeName(e.O.FriendlyName)
	default:
		return e.SourceID
	}
}
