package postgres

import (
	"context"
	"database/sql"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
)

type RuleRepository struct {
	db *DB
}

func NewRuleRepository(db *DB) alert.RuleRepository {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) Create(ctx context.Context, rule *alert.Rule) error {
	query := `
		INSERT INTO alert_rules (id, name, metric, operator, threshold, severity, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.Name, rule.Metric, rule.Operator, rule.Threshold,
		rule.Severity, rule.Source, encodeTime(rule.CreatedAt),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create rule", err)
	}

	return nil
}

func (r *RuleRepository) GetByID(ctx context.Context, id string) (*alert.Rule, error) {
	query := `
		SELECT id, name, metric, operator, threshold, severity, source, created_at
		FROM alert_rules WHERE id = ?
	`

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Rule")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get rule", err)
	}

	return rule, nil
}

func (r *RuleRepository) FindBySourceAndTitle(ctx context.Context, source, title string) (*alert.Rule, error) {
	query := `
		SELECT id, name, metric, operator, threshold, severity, source, created_at
		FROM alert_rules WHERE source = ? AND name = ?
		ORDER BY created_at DESC LIMIT 1
	`

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, source, title))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Rule")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to find rule", err)
	}

	return rule, nil
}

func scanRule(row rowScanner) (*alert.Rule, error) {
	var rule alert.Rule
	var createdAt string

	err := row.Scan(
		&rule.ID, &rule.Name, &rule.Metric, &rule.Operator, &rule.Threshold,
		&rule.Severity, &rule.Source, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	rule.CreatedAt = decodeTime(createdAt)
	return &rule, nil
}
