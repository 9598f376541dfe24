package client

import "time"

// Alert represents an alert as returned by the API
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

// Correlation represents a recorded correlation between two alerts
type Correlation struct {
	ID            string    `json:"id"`
	AlertID       string    `json:"alert_id"`
	CorrelationID string    `json:"correlation_id"`
	Type          string    `json:"type"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
}

// Notification represents one notification history row
type Notification struct {
	ID           string     `json:"id"`
	AlertID      string     `json:"alert_id"`
	ChannelType  string     `json:"channel_type"`
	Recipient    string     `json:"recipient"`
	Subject      string     `json:"subject"`
	Status       string     `json:"status"`
	Attempts     int        `json:"attempts"`
	MaxAttempts  int        `json:"max_attempts"`
	Priority     string     `json:"priority"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
}

// Event is a raw alert event to ingest
type Event struct {
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Severity    string            `json:"severity"`
	Source      string            `json:"source"`
	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
	MetricValue float64           `json:"metric_value,omitempty"`
	Threshold   float64           `json:"threshold,omitempty"`
	Timestamp   time.Time         `json:"timestamp,omitempty"`
}

// ProcessResult is the pipeline outcome for one ingested event
type ProcessResult struct {
	AlertID               string      `json:"alert_id"`
	Action                string      `json:"action"`
	Fingerprint           string      `json:"fingerprint"`
	CorrelationsFound     int         `json:"correlations_found"`
	NotificationsSent     int         `json:"notifications_sent"`
	ProcessingTimeSeconds float64     `json:"processing_time_seconds"`
	Filtered              bool        `json:"filtered"`
	FilterReason          string      `json:"filter_reason,omitempty"`
	Strategy              interface{} `json:"notification_strategy,omitempty"`
}

// AckResult is the outcome of acknowledging an alert
type AckResult struct {
	AlertID        string    `json:"alert_id"`
	Status         string    `json:"status"`
	AcknowledgedAt time.Time `json:"acknowledged_at"`
	AcknowledgedBy string    `json:"acknowledged_by"`
}

// ResolveResult is the outcome of resolving an alert
type ResolveResult struct {
	AlertID         string    `json:"alert_id"`
	Status          string    `json:"status"`
	ResolvedAt      time.Time `json:"resolved_at"`
	ResolvedBy      string    `json:"resolved_by"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// AlertDetail is an alert with its recorded correlations
type AlertDetail struct {
	Alert        Alert         `json:"alert"`
	Correlations []Correlation `json:"correlations"`
}

// AlertSummary contains alert counts grouped by status
type AlertSummary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// Page wraps a paginated list response
type Page[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ListOptions contains common pagination options
type ListOptions struct {
	Page     int
	PageSize int
}
