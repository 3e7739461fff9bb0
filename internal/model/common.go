// Package model holds the JSON shapes returned by the Gigaset Elements cloud.
package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Room is the room an element is assigned to.
type Room struct {
	RoomName     string `json:"roomName,omitempty"`
	ID           *int   `json:"id,omitempty"`
	FriendlyName string `json:"friendlyName,omitempty"`
}

// FrontendTags carries app-side annotations.
type FrontendTags struct {
	Room *Room `json:"room,omitempty"`
}

// UmosConfiguredType describes how a universal sensor is configured.
type UmosConfiguredType struct {
	MainType string `json:"mainType"`
	SubType  string `json:"subType"`
}

// Command is sent to an endnode, e.g. to switch a plug.
type Command struct {
	Name string `json:"name"`
}

// Commands understood by plugs and sirens.
var (
	CommandOn  = Command{Name: "on"}
	CommandOff = Command{Name: "off"}
)

// NormalizeName trims s and converts it to Unicode NFC, so names typed on
// different devices compare byte-equal.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// SameName reports whether a and b are equal after normalization and case folding.
func SameName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(NormalizeName(a)) == fold.String(NormalizeName(b))
}
