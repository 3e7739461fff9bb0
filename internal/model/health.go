package model

// Health colors reported by the system health endpoint.
const (
	HealthGreen  = "green"
	HealthOrange = "orange"
	HealthRed    = "red"
)

// SystemHealth summarizes whether any element needs attention.
type SystemHealth struct {
	SystemHealth     string    `json:"systemHealth"`
	StatusMsgID      string    `json:"statusMsgId"`
	AffectedElements []Endnode `json:"affectedElements"`
}

// OK reports whether the system is green.
func (h SystemHealth) OK() bool {
	return h.SystemHealth == HealthGreen
}
