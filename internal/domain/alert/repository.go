package alert

import (
	"context"
	"time"
)

// Repository defines the interface for alert data access
type Repository interface {
	// Create persists a new alert
	Create(ctx context.Context, alert *Alert) error

	// Update persists changes to an existing alert
	Update(ctx context.Context, alert *Alert) error

	// GetByID retrieves an alert by ID
	GetByID(ctx context.Context, id string) (*Alert, error)

	// GetOpenByFingerprint retrieves the open (active or acknowledged)
	// alert for a fingerprint, if any
	GetOpenByFingerprint(ctx context.Context, fingerprint string) (*Alert, error)

	// ListByFingerprintSince retrieves alerts with the given fingerprint
	// created after the given time
	ListByFingerprintSince(ctx context.Context, fingerprint string, since time.Time) ([]*Alert, error)

	// ListOpenSince retrieves open alerts that started after the given
	// time, newest first, capped at limit
	ListOpenSince(ctx context.Context, since time.Time, limit int) ([]*Alert, error)

	// ListByRuleSince retrieves alerts for a rule created after the given
	// time
	ListByRuleSince(ctx context.Context, ruleID string, since time.Time) ([]*Alert, error)

	// CountActive counts currently active alerts system-wide
	CountActive(ctx context.Context) (int, error)

	// CountByStatus counts alerts grouped by status
	CountByStatus(ctx context.Context) (map[string]int, error)

	// List retrieves alerts with filters and pagination
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Alert, int64, error)

	// AppendAudit records a lifecycle event for an alert
	AppendAudit(ctx context.Context, event *AuditEvent) error
}

// RuleRepository defines the interface for alert rule data access
type RuleRepository interface {
	// Create persists a new rule
	Create(ctx context.Context, rule *Rule) error

	// GetByID retrieves a rule by ID
	GetByID(ctx context.Context, id string) (*Rule, error)

	// FindBySourceAndTitle retrieves the rule matching an event's source
	// and title, if any
	FindBySourceAndTitle(ctx context.Context, source, title string) (*Rule, error)
}
