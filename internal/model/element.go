package model

import (
	"encoding/json"
	"strings"
)

// ElementRoot is the response of the elements endpoint, grouped by element family.
type ElementRoot struct {
	GP01 []json.RawMessage `json:"gp01"`
	GP02 []Gateway         `json:"gp02"`
	YC01 []json.RawMessage `json:"yc01"`
	BS01 []BaseElement     `json:"bs01"`
	BS02 []json.RawMessage `json:"bs02"`
}

// Gateway is a gp02 element.
type Gateway struct {
	ID               string            `json:"id"`
	FriendlyName     string            `json:"friendlyName"`
	FrontendTags     FrontendTags      `json:"frontendTags"`
	ConnectionStatus string            `json:"connectionStatus"`
	Room             Room              `json:"room"`
	Capabilities     []string          `json:"capabilities"`
	Subelements      []json.RawMessage `json:"subelements"`
}

// BaseElement is a bs01 base station in element form.
type BaseElement struct {
	ID                    string        `json:"id"`
	Type                  string        `json:"type"`
	FriendlyName          string        `json:"friendlyName"`
	FirmwareStatus        string        `json:"firmwareStatus"`
	FirmwareVersion       string        `json:"firmwareVersion"`
	LatestFirmwareVersion string        `json:"latestFirmwareVersion"`
	ConnectionStatus      string        `json:"connectionStatus"`
	Timezone              string        `json:"timezone"`
	PairingMode           bool          `json:"pairingMode"`
	Subelements           []Subelement  `json:"subelements"`
	Capabilities          []string      `json:"capabilities"`
	States                States        `json:"states"`
	FrontendTags          *FrontendTags `json:"frontendTags,omitempty"`
	Room                  *Room         `json:"room,omitempty"`
}

// Subelement is a sensor of a base element, with its current readings.
type Subelement struct {
	ID                    string                `json:"id"`
	Type                  string                `json:"type"`
	FriendlyName          string                `json:"friendlyName"`
	FirmwareStatus        string                `json:"firmwareStatus"`
	FirmwareVersion       string                `json:"firmwareVersion"`
	LatestFirmwareVersion string                `json:"latestFirmwareVersion"`
	ConnectionStatus      string                `json:"connectionStatus"`
	Capabilities          []string              `json:"capabilities"`
	BatteryStatus         string                `json:"batteryStatus,omitempty"`
	PositionStatus        string                `json:"positionStatus,omitempty"`
	CalibrationStatus     string                `json:"calibrationStatus,omitempty"`
	LastCalReqTimestamp   *int64                `json:"lastCalReqTimestamp,omitempty"`
	RuntimeConfiguration  *RuntimeConfiguration `json:"runtimeConfiguration,omitempty"`
	States                States                `json:"states"`
	FrontendTags          *FrontendTags         `json:"frontendTags,omitempty"`
	Room                  *Room                 `json:"room,omitempty"`
	ButtonPressedTS       *int64                `json:"buttonPressedTs,omitempty"`
	TestRequired          *bool                 `json:"testRequired,omitempty"`
	Unmounted             *bool                 `json:"unmounted,omitempty"`
	SmokeDetected         *bool                 `json:"smokeDetected,omitempty"`
	PermanentBatteryLow   *bool                 `json:"permanentBatteryLow,omitempty"`
	SmokeDetectorOff      *bool                 `json:"smokeDetectorOff,omitempty"`
	BatterySaverMode      json.RawMessage       `json:"batterySaverMode,omitempty"`
}

// RuntimeConfiguration is the current configuration of a universal sensor or plug.
type RuntimeConfiguration struct {
	UmosConfiguredType      UmosConfiguredType `json:"umosConfiguredType"`
	Params                  SensorParams       `json:"params"`
	RelayState              string             `json:"relayState,omitempty"`
	StartTimestampInSeconds *int64             `json:"startTimestampInSeconds,omitempty"`
	DurationInSeconds       *int64             `json:"durationInSeconds,omitempty"`
}

// SensorParams are the tunables of a universal sensor.
type SensorParams struct {
	Sensibility          int  `json:"sensibility"`
	BuzzerEnabled        bool `json:"buzzerEnabled"`
	DrillDetectorEnabled bool `json:"drillDetectorEnabled"`
}

// States holds sensor readings. Absent readings stay nil.
type States struct {
	Temperature               *float64        `json:"temperature,omitempty"`
	Pressure                  *float64        `json:"pressure,omitempty"`
	Humidity                  *float64        `json:"humidity,omitempty"`
	FactoryType               string          `json:"factoryType,omitempty"`
	WaterAlarm                string          `json:"waterAlarm,omitempty"`
	Relay                     string          `json:"relay,omitempty"`
	SetPoint                  json.RawMessage `json:"setPoint,omitempty"`
	MomentaryPowerMeasurement json.RawMessage `json:"momentaryPowerMeasurement,omitempty"`
}

// Subelement finds a subelement across all base elements. id is either the
// full "<base station>.<endnode>" ID or the endnode ID alone, as listed by
// the base stations endpoint.
func (r ElementRoot) Subelement(id string) (Subelement, bool) {
	for _, bs := range r.BS01 {
		for _, s := range bs.Subelements {
			if s.ID == id || endnodeID(s.ID) == id {
				return s, true
			}
		}
	}
	return Subelement{}, false
}

// endnodeID returns the part of a subelement ID after the last dot.
func endnodeID(id string) string {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[i+1:]
	}
	return id
}
