package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
)

const alertColumns = `
	id, fingerprint, title, description, severity, status, source,
	labels, annotations, starts_at, ends_at,
	acknowledged_at, acknowledged_by, resolved_at, resolved_by,
	rule_id, created_at, updated_at
`

type AlertRepository struct {
	db *DB
}

func NewAlertRepository(db *DB) alert.Repository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, a *alert.Alert) error {
	query := fmt.Sprintf(`
		INSERT INTO alerts (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, alertColumns)

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Fingerprint, a.Title, a.Description, a.Severity, a.Status, a.Source,
		encodeMap(a.Labels), encodeMap(a.Annotations),
		encodeTime(a.StartsAt), encodeNullTime(a.EndsAt),
		encodeNullTime(a.AcknowledgedAt), a.AcknowledgedBy,
		encodeNullTime(a.ResolvedAt), a.ResolvedBy,
		a.RuleID, encodeTime(a.CreatedAt), encodeTime(a.UpdatedAt),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create alert", err)
	}

	return nil
}

func (r *AlertRepository) Update(ctx context.Context, a *alert.Alert) error {
	query := `
		UPDATE alerts SET
			title = ?, description = ?, severity = ?, status = ?,
			labels = ?, annotations = ?, ends_at = ?,
			acknowledged_at = ?, acknowledged_by = ?,
			resolved_at = ?, resolved_by = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		a.Title, a.Description, a.Severity, a.Status,
		encodeMap(a.Labels), encodeMap(a.Annotations), encodeNullTime(a.EndsAt),
		encodeNullTime(a.AcknowledgedAt), a.AcknowledgedBy,
		encodeNullTime(a.ResolvedAt), a.ResolvedBy, encodeTime(a.UpdatedAt),
		a.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update alert", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Alert")
	}

	return nil
}

func (r *AlertRepository) GetByID(ctx context.Context, id string) (*alert.Alert, error) {
	query := fmt.Sprintf("SELECT %s FROM alerts WHERE id = ?", alertColumns)

	a, err := scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Alert")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get alert", err)
	}

	return a, nil
}

func (r *AlertRepository) GetOpenByFingerprint(ctx context.Context, fingerprint string) (*alert.Alert, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM alerts
		WHERE fingerprint = ? AND status IN ('active', 'acknowledged')
		ORDER BY created_at DESC LIMIT 1
	`, alertColumns)

	a, err := scanAlert(r.db.QueryRowContext(ctx, query, fingerprint))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Alert")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get alert by fingerprint", err)
	}

	return a, nil
}

func (r *AlertRepository) ListByFingerprintSince(ctx context.Context, fingerprint string, since time.Time) ([]*alert.Alert, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM alerts
		WHERE fingerprint = ? AND created_at >= ?
		ORDER BY created_at DESC
	`, alertColumns)

	return r.queryAlerts(ctx, query, fingerprint, encodeTime(since))
}

func (r *AlertRepository) ListOpenSince(ctx context.Context, since time.Time, limit int) ([]*alert.Alert, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM alerts
		WHERE status IN ('active', 'acknowledged') AND starts_at >= ?
		ORDER BY starts_at DESC LIMIT ?
	`, alertColumns)

	return r.queryAlerts(ctx, query, encodeTime(since), limit)
}

func (r *AlertRepository) ListByRuleSince(ctx context.Context, ruleID string, since time.Time) ([]*alert.Alert, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM alerts
		WHERE rule_id = ? AND created_at >= ?
		ORDER BY created_at DESC
	`, alertColumns)

	return r.queryAlerts(ctx, query, ruleID, encodeTime(since))
}

func (r *AlertRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM alerts WHERE status = 'active'").Scan(&count)
	if err != nil {
		return 0, errors.DatabaseError("Failed to count active alerts", err)
	}
	return count, nil
}

func (r *AlertRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM alerts GROUP BY status")
	if err != nil {
		return nil, errors.DatabaseError("Failed to count alerts by status", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, errors.DatabaseError("Failed to scan status count", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func (r *AlertRepository) List(ctx context.Context, filter alert.Filter, limit, offset int) ([]*alert.Alert, int64, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}

	if filter.Severity != "" {
		where = append(where, "severity = ?")
		args = append(args, filter.Severity)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Source != "" {
		where = append(where, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.RuleID != "" {
		where = append(where, "rule_id = ?")
		args = append(args, filter.RuleID)
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM alerts WHERE %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count alerts", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM alerts WHERE %s
		ORDER BY created_at DESC LIMIT ? OFFSET ?
	`, alertColumns, whereClause)
	args = append(args, limit, offset)

	alerts, err := r.queryAlerts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

func (r *AlertRepository) AppendAudit(ctx context.Context, event *alert.AuditEvent) error {
	query := `
		INSERT INTO alert_audit (id, alert_id, action, actor, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.AlertID, event.Action, event.Actor, encodeTime(event.CreatedAt),
	)
	if err != nil {
		return errors.DatabaseError("Failed to append audit event", err)
	}

	return nil
}

func (r *AlertRepository) queryAlerts(ctx context.Context, query string, args ...interface{}) ([]*alert.Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list alerts", err)
	}
	defer rows.Close()

	var alerts []*alert.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan alert", err)
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*alert.Alert, error) {
	var a alert.Alert
	var labels, annotations, startsAt, createdAt, updatedAt string
	var endsAt, acknowledgedAt, resolvedAt sql.NullString

	err := row.Scan(
		&a.ID, &a.Fingerprint, &a.Title, &a.Description, &a.Severity, &a.Status, &a.Source,
		&labels, &annotations, &startsAt, &endsAt,
		&acknowledgedAt, &a.AcknowledgedBy, &resolvedAt, &a.ResolvedBy,
		&a.RuleID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Labels = decodeMap(labels)
	a.Annotations = decodeMap(annotations)
	a.StartsAt = decodeTime(startsAt)
	a.EndsAt = decodeNullTime(endsAt)
	a.AcknowledgedAt = decodeNullTime(acknowledgedAt)
	a.ResolvedAt = decodeNullTime(resolvedAt)
	a.CreatedAt = decodeTime(createdAt)
	a.UpdatedAt = decodeTime(updatedAt)

	return &a, nil
}
