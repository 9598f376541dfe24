// Package strategy turns an alert and its correlations into a concrete
// delivery plan: channels, priority, delay and escalation policy.
package strategy

import (
	"time"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/domain/correlation"
	"github.com/sentinelops/sentinel/internal/domain/notification"
)

// correlationEscalationCount is the correlation count above which a plan is
// escalated to urgent with batched delivery.
const correlationEscalationCount = 3

// Planner builds notification plans
type Planner struct{}

// NewPlanner creates a strategy planner
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan produces the delivery plan for an alert with its correlation set
func (p *Planner) Plan(a *alert.Alert, correlations []*correlation.Correlation) *notification.Plan {
	plan := basePlan(a.Severity)

	if len(correlations) > 0 {
		plan.CorrelationBased = true
	}
	if len(correlations) > correlationEscalationCount {
		plan.Priority = notification.PriorityUrgent
		plan.Channels = []notification.ChannelType{
			notification.ChannelEmail,
			notification.ChannelSMS,
			notification.ChannelPush,
			notification.ChannelWebhook,
		}
		// Delay delivery to let related notifications batch together
		plan.DelaySeconds = 30
	}

	plan.Escalation = escalationPolicy(a.Severity)
	return plan
}

// basePlan maps severity to the default priority and channel set
func basePlan(severity string) *notification.Plan {
	switch severity {
	case alert.SeverityCritical:
		return &notification.Plan{
			Priority: notification.PriorityUrgent,
			Channels: []notification.ChannelType{
				notification.ChannelEmail,
				notification.ChannelSMS,
				notification.ChannelPush,
			},
		}
	case alert.SeverityHigh:
		return &notification.Plan{
			Priority: notification.PriorityHigh,
			Channels: []notification.ChannelType{
				notification.ChannelEmail,
				notification.ChannelPush,
			},
		}
	default:
		return &notification.Plan{
			Priority: notification.PriorityNormal,
			Channels: []notification.ChannelType{notification.ChannelEmail},
		}
	}
}

// escalationPolicy resolves the escalation sequence for a severity. Only
// critical and high severities escalate.
func escalationPolicy(severity string) *notification.EscalationPolicy {
	switch severity {
	case alert.SeverityCritical:
		return &notification.EscalationPolicy{
			Name:          "critical",
			EscalateAfter: 5 * time.Minute,
			Levels: []notification.EscalationLevel{
				{After: 0, Channels: []notification.ChannelType{notification.ChannelEmail, notification.ChannelSMS}},
				{After: 5 * time.Minute, Channels: []notification.ChannelType{notification.ChannelWebhook}},
				{After: 10 * time.Minute, Channels: []notification.ChannelType{notification.ChannelPhone}},
			},
		}
	case alert.SeverityHigh:
		return &notification.EscalationPolicy{
			Name:          "high",
			EscalateAfter: 15 * time.Minute,
			Levels: []notification.EscalationLevel{
				{After: 0, Channels: []notification.ChannelType{notification.ChannelEmail}},
				{After: 15 * time.Minute, Channels: []notification.ChannelType{notification.ChannelSMS}},
			},
		}
	default:
		return nil
	}
}
