package correlation

import "time"

// Type classifies how two alerts relate
type Type string

// Correlation types
const (
	TypeTemporal Type = "temporal"
	TypeSpatial  Type = "spatial"
	TypeSemantic Type = "semantic"
	TypeCausal   Type = "causal"
)

// Types lists every correlation type
func Types() []Type {
	return []Type{TypeTemporal, TypeSpatial, TypeSemantic, TypeCausal}
}

// Correlation is a scored relationship between an alert and another open
// alert. Rows are immutable once written; the same alert pair may accumulate
// rows of different types.
type Correlation struct {
	ID            string    `json:"id"`
	AlertID       string    `json:"alert_id"`
	CorrelationID string    `json:"correlation_id"`
	Type          Type      `json:"type"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
}
