package model

// BaseStation is a hub and the endnodes paired with it.
type BaseStation struct {
	ID                string            `json:"id"`
	FriendlyName      string            `json:"friendly_name"`
	Status            string            `json:"status"`
	FirmwareStatus    string            `json:"firmware_status"`
	UpdatesAvailable  bool              `json:"updates_available"`
	Version           string            `json:"version"`
	LatestVersion     string            `json:"latest_version"`
	FWOutdated        bool              `json:"fw_outdated"`
	IntrusionSettings IntrusionSettings `json:"intrusion_settings"`
	Timezone          string            `json:"timezone,omitempty"`
	Endnodes          []Endnode         `json:"endnodes"`
	Sensors           []Endnode         `json:"sensors"`
}

// IntrusionSettings is the alarm configuration of a base station.
type IntrusionSettings struct {
	ActiveMode               string `json:"active_mode"`
	RequestedMode            string `json:"requestedMode"`
	ModeTransitionInProgress bool   `json:"modeTransitionInProgress"`
	Modes                    []Mode `json:"modes"`
}

// Mode holds exactly one of the named alarm modes.
type Mode struct {
	Custom *ModeSettings `json:"custom,omitempty"`
	Night  *ModeSettings `json:"night,omitempty"`
	Home   *ModeSettings `json:"home,omitempty"`
	Away   *ModeSettings `json:"away,omitempty"`
}

// ModeSettings configures the behavior of an alarm mode.
type ModeSettings struct {
	SirensOn     bool             `json:"sirens_on"`
	TriggerDelay int              `json:"trigger_delay"`
	PrivacyMode  bool             `json:"privacy_mode"`
	Settings     []EndnodeSetting `json:"settings,omitempty"`
}

// EndnodeSetting overrides the behavior of one endnode in a mode.
type EndnodeSetting struct {
	Behaviors Behaviors `json:"behaviors"`
	EndnodeID string    `json:"endnode_id,omitempty"`
}

// Behaviors maps triggers to reactions.
type Behaviors struct {
	Open        string `json:"open"`
	Prealert    string `json:"prealert"`
	Tilt        string `json:"tilt"`
	Drilling    string `json:"drilling"`
	ForcedEntry string `json:"forcedentry"`
}

// Endnode is a sensor or actuator paired with a base station.
type Endnode struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	FriendlyName   string    `json:"friendly_name"`
	Status         string    `json:"status"`
	FirmwareStatus string    `json:"firmware_status"`
	FWVersion      string    `json:"fw_version"`
	LatestVersion  string    `json:"latest_version"`
	Battery        *Battery  `json:"battery,omitempty"`
	TSButton       *int64    `json:"ts_button,omitempty"`
	PositionStatus string    `json:"position_status,omitempty"`
	O              *Actuator `json:"o,omitempty"`
}

// Battery reports the battery state of an endnode.
type Battery struct {
	State string `json:"state"`
}

// Actuator describes the relay of a plug.
type Actuator struct {
	Relay         string        `json:"relay"`
	Configuration RelaySchedule `json:"configuration"`
}

// RelaySchedule is the timer configuration of a relay.
type RelaySchedule struct {
	RelayState              string `json:"relayState"`
	StartTimestampInSeconds int64  `json:"startTimestampInSeconds"`
	DurationInSeconds       int64  `json:"durationInSeconds"`
}

// EndnodeByName finds an endnode by its friendly name, ignoring case and
// Unicode normalization differences.
func (b BaseStation) EndnodeByName(name string) (Endnode, bool) {
	for _, e := range b.Endnodes {
		if SameName(e.FriendlyName, name) {
			return e, true
		}
	}
	return Endnode{}, false
}

// Endnode finds an endnode by ID.
func (b BaseStation) Endnode(id string) (Endnode, bool) {
	for _, e := range b.Endnodes {
		if e.ID == id {
			return e, true
		}
	}
	return Endnode{}, false
}
