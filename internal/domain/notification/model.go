package notification

import (
	"encoding/json"
	"time"
)

// ChannelType identifies a notification transport
type ChannelType string

// Channel types
const (
	ChannelEmail   ChannelType = "email"
	ChannelSMS     ChannelType = "sms"
	ChannelPush    ChannelType = "push"
	ChannelWebhook ChannelType = "webhook"
	ChannelSlack   ChannelType = "slack"
	ChannelDiscord ChannelType = "discord"
	ChannelPhone   ChannelType = "phone"
)

// IsValid checks if the channel type is known
func (c ChannelType) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPush, ChannelWebhook, ChannelSlack, ChannelDiscord, ChannelPhone:
		return true
	default:
		return false
	}
}

// Channel is a configured notification transport. The channel inventory is
// owned by the admin surface; the engine reads it at startup.
type Channel struct {
	ID            string                 `json:"id"`
	Type          ChannelType            `json:"type"`
	Name          string                 `json:"name"`
	Recipient     string                 `json:"recipient"`
	Configuration map[string]interface{} `json:"configuration,omitempty"`
	Enabled       bool                   `json:"enabled"`
}

// Priority represents notification urgency
type Priority string

// Priorities, highest first
const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority lane, highest first
func Priorities() []Priority {
	return []Priority{PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow}
}

// Status represents the delivery state of a notification
type Status string

// Delivery statuses
const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusRetry     Status = "retry"
)

// History is the per-attempt audit record of a notification. Created in
// pending state when a notification is planned and mutated by the dispatcher
// through its state machine.
type History struct {
	ID           string            `json:"id"`
	AlertID      string            `json:"alert_id"`
	ChannelID    string            `json:"channel_id"`
	ChannelType  ChannelType       `json:"channel_type"`
	Recipient    string            `json:"recipient"`
	Subject      string            `json:"subject"`
	Body         string            `json:"body"`
	Status       Status            `json:"status"`
	Attempts     int               `json:"attempts"`
	MaxAttempts  int               `json:"max_attempts"`
	Priority     Priority          `json:"priority"`
	ErrorMessage string            `json:"error_message,omitempty"`
	ResponseData map[string]string `json:"response_data,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	DeliveredAt  *time.Time        `json:"delivered_at,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at,omitempty"`
}

// Plan is the strategy planner's output: the concrete delivery decision for
// one alert. It is the sole input to the dispatcher and the escalation hook.
type Plan struct {
	Priority         Priority           `json:"priority"`
	Channels         []ChannelType      `json:"channels"`
	DelaySeconds     int                `json:"delay_seconds"`
	CorrelationBased bool               `json:"correlation_based"`
	Escalation       *EscalationPolicy  `json:"escalation,omitempty"`
}

// EscalationPolicy describes a delayed re-notification sequence for an
// unacknowledged alert
type EscalationPolicy struct {
	Name          string            `json:"name"`
	EscalateAfter time.Duration     `json:"escalate_after"`
	Levels        []EscalationLevel `json:"levels"`
}

// EscalationLevel is one step of an escalation sequence
type EscalationLevel struct {
	After    time.Duration `json:"after"`
	Channels []ChannelType `json:"channels"`
}

// SendResult is the outcome of a channel send
type SendResult struct {
	Success      bool              `json:"success"`
	Error        string            `json:"error,omitempty"`
	ResponseData map[string]string `json:"response_data,omitempty"`
}

// ConfigField describes one field of a channel's configuration schema
type ConfigField struct {
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// ChannelInfo is a channel implementation's self-description
type ChannelInfo struct {
	Type        ChannelType   `json:"type"`
	Description string        `json:"description"`
	Config      []ConfigField `json:"config"`
}

// Filter contains notification history listing options
type Filter struct {
	AlertID     string
	ChannelType ChannelType
	Status      Status
	From        *time.Time
	To          *time.Time
}

// MarshalResponseData encodes response data for storage
func MarshalResponseData(data map[string]string) []byte {
	if len(data) == 0 {
		return nil
	}
	b, _ := json.Marshal(data)
	return b
}

// UnmarshalResponseData decodes stored response data
func UnmarshalResponseData(b []byte) map[string]string {
	if len(b) == 0 {
		return nil
	}
	var data map[string]string
	if err := json.Unmarshal(b, &data); err != nil {
		return nil
	}
	return data
}
