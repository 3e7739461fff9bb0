// Package testdata embeds anonymized API responses used as fixtures.
package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/matthsc/gigaset-elements-api/internal/model"
)

var (
	//go:embed base-stations.json
	baseStationsJSON []byte
	//go:embed elements.json
	elementsJSON []byte
	//go:embed events.json
	eventsJSON []byte
)

// BaseStationsJSON returns the raw base stations response.
func BaseStationsJSON() []byte { return baseStationsJSON }

// ElementsJSON returns the raw elements response.
func ElementsJSON() []byte { return elementsJSON }

// EventsJSON returns the raw events response.
func EventsJSON() []byte { return eventsJSON }

// LoadBaseStations parses base-stations.json.
func LoadBaseStations() ([]model.BaseStation, error) {
	var v []model.BaseStation
	if err := json.Unmarshal(baseStationsJSON, &v); err != nil {
		return nil, fmt.Errorf("parse base-stations.json: %w", err)
	}
	return v, nil
}

// LoadElements parses elements.json.
func LoadElements() (*model.ElementRoot, error) {
	var v model.ElementRoot
	if err := json.Unmarshal(elementsJSON, &v); err != nil {
		return nil, fmt.Errorf("parse elements.json: %w", err)
	}
	return &v, nil
}

// LoadEvents parses events.json. Events are sorted newest first.
func LoadEvents() (*model.EventPage, error) {
	var v model.EventPage
	if err := json.Unmarshal(eventsJSON, &v); err != nil {
		return nil, fmt.Errorf("parse events.json: %w", err)
	}
	return &v, nil
}
