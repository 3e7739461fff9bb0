// Package endpoint holds the fixed Gigaset Elements cloud URLs.
package endpoint

import "net/url"

const (
	Status       = "https://status.gigaset-elements.de/api/v1/status"
	Login        = "https://im.gigaset-elements.de/identity/api/v1/user/login"
	Auth         = "https://api.gigaset-elements.de/api/v1/auth/openid/begin?op=gigaset"
	BaseStations = "https://api.gigaset-elements.de/api/v1/me/basestations"
	Elements     = "https://api.gigaset-elements.de/api/v2/me/elements"
	Events       = "https://api.gigaset-elements.de/api/v2/me/events"
	Health       = "https://api.gigaset-elements.de/api/v2/me/health"
)

// Query parameters of the events endpoint.
const (
	ParamFrom  = "from_ts"
	ParamTo    = "to_ts"
	ParamLimit = "limit"
)

// Command returns the command URL of an endnode attached to a base station.
func Command(baseStationID, endnodeID string) string {
	return BaseStations + "/" + url.PathEscape(baseStationID) +
		"/endnodes/" + url.PathEscape(endnodeID) + "/cmd"
}
