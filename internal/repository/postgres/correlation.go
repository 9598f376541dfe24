package postgres

import (
	"context"
	"database/sql"

	"github.com/sentinelops/sentinel/internal/domain/correlation"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
)

type CorrelationRepository struct {
	db *DB
}

func NewCorrelationRepository(db *DB) correlation.Repository {
	return &CorrelationRepository{db: db}
}

func (r *CorrelationRepository) CreateBatch(ctx context.Context, correlations []*correlation.Correlation) error {
	if len(correlations) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin transaction", err)
	}

	query := r.db.bind(`
		INSERT INTO alert_correlations (id, alert_id, correlation_id, type, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)

	for _, c := range correlations {
		_, err := tx.ExecContext(ctx, query,
			c.ID, c.AlertID, c.CorrelationID, string(c.Type), c.Confidence, encodeTime(c.CreatedAt),
		)
		if err != nil {
			tx.Rollback()
			return errors.DatabaseError("Failed to create correlation", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit correlations", err)
	}

	return nil
}

func (r *CorrelationRepository) GetByID(ctx context.Context, id string) (*correlation.Correlation, error) {
	query := `
		SELECT id, alert_id, correlation_id, type, confidence, created_at
		FROM alert_correlations WHERE id = ?
	`

	c, err := scanCorrelation(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Correlation")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get correlation", err)
	}

	return c, nil
}

func (r *CorrelationRepository) ListByAlert(ctx context.Context, alertID string) ([]*correlation.Correlation, error) {
	query := `
		SELECT id, alert_id, correlation_id, type, confidence, created_at
		FROM alert_correlations WHERE alert_id = ?
		ORDER BY confidence DESC
	`

	rows, err := r.db.QueryContext(ctx, query, alertID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list correlations", err)
	}
	defer rows.Close()

	var correlations []*correlation.Correlation
	for rows.Next() {
		c, err := scanCorrelation(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan correlation", err)
		}
		correlations = append(correlations, c)
	}

	return correlations, rows.Err()
}

func scanCorrelation(row rowScanner) (*correlation.Correlation, error) {
	var c correlation.Correlation
	var corrType, createdAt string

	err := row.Scan(&c.ID, &c.AlertID, &c.CorrelationID, &corrType, &c.Confidence, &createdAt)
	if err != nil {
		return nil, err
	}

	c.Type = correlation.Type(corrType)
	c.CreatedAt = decodeTime(createdAt)
	return &c, nil
}
