package alert

import "time"

// Alert represents an open or historical alert condition. Exactly one alert
// with an open status may exist per fingerprint at a time; repeated events
// for the same condition mutate the open alert instead of creating new rows.
type Alert struct {
	ID             string            `json:"id"`
	Fingerprint    string            `json:"fingerprint"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Severity       string            `json:"severity"`
	Status         string            `json:"status"`
	Source         string            `json:"source"`
	Labels         map[string]string `json:"labels,omitempty"`
	Annotations    map[string]string `json:"annotations,omitempty"`
	StartsAt       time.Time         `json:"starts_at"`
	EndsAt         *time.Time        `json:"ends_at,omitempty"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at,omitempty"`
	AcknowledgedBy string            `json:"acknowledged_by,omitempty"`
	ResolvedAt     *time.Time        `json:"resolved_at,omitempty"`
	ResolvedBy     string            `json:"resolved_by,omitempty"`
	RuleID         string            `json:"rule_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at,omitempty"`
}

// Rule describes the condition an alert was raised for. Rules are auto
// created from an unmatched event's source and title when none exists.
type Rule struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Metric    string    `json:"metric"`
	Operator  string    `json:"operator"`
	Threshold float64   `json:"threshold"`
	Severity  string    `json:"severity"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is a raw incoming alert event before fingerprinting
type Event struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description"`
	Severity    string            `json:"severity" validate:"required,oneof=critical high medium low info"`
	Source      string            `json:"source" validate:"required"`
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
	MetricValue float64           `json:"metric_value"`
	Threshold   float64           `json:"threshold"`
	Timestamp   time.Time         `json:"timestamp"`
}

// AuditEvent records a lifecycle transition on an alert
type AuditEvent struct {
	ID        string    `json:"id"`
	AlertID   string    `json:"alert_id"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Alert severity levels
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// Alert status
const (
	StatusActive       = "active"
	StatusAcknowledged = "acknowledged"
	StatusResolved     = "resolved"
	StatusSuppressed   = "suppressed"
)

// Audit actions
const (
	ActionCreated      = "created"
	ActionUpdated      = "updated"
	ActionAcknowledged = "acknowledged"
	ActionResolved     = "resolved"
)

// severityWeights maps severity to its filtering weight
var severityWeights = map[string]float64{
	SeverityCritical: 1.0,
	SeverityHigh:     0.8,
	SeverityMedium:   0.6,
	SeverityLow:      0.4,
	SeverityInfo:     0.2,
}

// SeverityWeight returns the filtering weight for a severity. Unknown
// severities weigh the same as info.
func SeverityWeight(severity string) float64 {
	if w, ok := severityWeights[severity]; ok {
		return w
	}
	return severityWeights[SeverityInfo]
}

// IsOpen reports whether the alert is in an open (active or acknowledged)
// state.
func (a *Alert) IsOpen() bool {
	return a.Status == StatusActive || a.Status == StatusAcknowledged
}

// Service returns the service identity of the alert, preferring the label
// over the annotation.
func (a *Alert) Service() string {
	if s, ok := a.Labels["service"]; ok && s != "" {
		return s
	}
	return a.Annotations["service"]
}

// Filter contains alert listing options
type Filter struct {
	Severity string
	Status   string
	Source   string
	RuleID   string
}
