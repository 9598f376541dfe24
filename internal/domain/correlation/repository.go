package correlation

import "context"

// Repository defines the interface for correlation data access
type Repository interface {
	// CreateBatch persists a batch of correlations for one alert
	CreateBatch(ctx context.Context, correlations []*Correlation) error

	// GetByID retrieves a correlation by ID
	GetByID(ctx context.Context, id string) (*Correlation, error)

	// ListByAlert retrieves all correlations recorded for an alert
	ListByAlert(ctx context.Context, alertID string) ([]*Correlation, error)
}
