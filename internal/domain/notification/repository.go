package notification

import (
	"context"
	"time"
)

// Repository defines the interface for notification history data access
type Repository interface {
	// Create persists a new history row
	Create(ctx context.Context, h *History) error

	// Update persists changes to a history row
	Update(ctx context.Context, h *History) error

	// GetByID retrieves a history row by ID
	GetByID(ctx context.Context, id string) (*History, error)

	// ListByAlert retrieves history rows for an alert
	ListByAlert(ctx context.Context, alertID string) ([]*History, error)

	// List retrieves history rows with filters and pagination
	List(ctx context.Context, filter Filter, limit, offset int) ([]*History, int64, error)

	// ListStuckSent retrieves rows still in sent state whose last send
	// happened before the cutoff, for asynchronous delivery reconciliation
	ListStuckSent(ctx context.Context, before time.Time) ([]*History, error)

	// PurgeOlderThan deletes rows created before the cutoff and returns
	// the number removed
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ChannelProvider resolves configured channels. Channel configuration is
// owned by the external admin surface and read-only here.
type ChannelProvider interface {
	// GetByType returns the enabled channel for a channel type
	GetByType(ctx context.Context, t ChannelType) (*Channel, error)

	// List returns every configured channel
	List(ctx context.Context) ([]*Channel, error)
}
