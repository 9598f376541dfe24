package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
)

const notificationColumns = `
	id, alert_id, channel_id, channel_type, recipient, subject, body,
	status, attempts, max_attempts, priority, error_message, response_data,
	created_at, sent_at, delivered_at, updated_at
`

type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) notification.Repository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, h *notification.History) error {
	query := fmt.Sprintf(`
		INSERT INTO notification_history (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, notificationColumns)

	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.AlertID, h.ChannelID, string(h.ChannelType), h.Recipient, h.Subject, h.Body,
		string(h.Status), h.Attempts, h.MaxAttempts, string(h.Priority), h.ErrorMessage,
		string(notification.MarshalResponseData(h.ResponseData)),
		encodeTime(h.CreatedAt), encodeNullTime(h.SentAt), encodeNullTime(h.DeliveredAt),
		encodeTime(h.UpdatedAt),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create notification history", err)
	}

	return nil
}

func (r *NotificationRepository) Update(ctx context.Context, h *notification.History) error {
	query := `
		UPDATE notification_history SET
			status = ?, attempts = ?, error_message = ?, response_data = ?,
			sent_at = ?, delivered_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(h.Status), h.Attempts, h.ErrorMessage,
		string(notification.MarshalResponseData(h.ResponseData)),
		encodeNullTime(h.SentAt), encodeNullTime(h.DeliveredAt), encodeTime(h.UpdatedAt),
		h.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update notification history", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Notification")
	}

	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*notification.History, error) {
	query := fmt.Sprintf("SELECT %s FROM notification_history WHERE id = ?", notificationColumns)

	h, err := scanNotification(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Notification")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get notification history", err)
	}

	return h, nil
}

func (r *NotificationRepository) ListByAlert(ctx context.Context, alertID string) ([]*notification.History, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM notification_history WHERE alert_id = ?
		ORDER BY created_at DESC
	`, notificationColumns)

	return r.queryNotifications(ctx, query, alertID)
}

func (r *NotificationRepository) List(ctx context.Context, filter notification.Filter, limit, offset int) ([]*notification.History, int64, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}

	if filter.AlertID != "" {
		where = append(where, "alert_id = ?")
		args = append(args, filter.AlertID)
	}
	if filter.ChannelType != "" {
		where = append(where, "channel_type = ?")
		args = append(args, string(filter.ChannelType))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.From != nil {
		where = append(where, "created_at >= ?")
		args = append(args, encodeTime(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "created_at <= ?")
		args = append(args, encodeTime(*filter.To))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM notification_history WHERE %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count notification history", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM notification_history WHERE %s
		ORDER BY created_at DESC LIMIT ? OFFSET ?
	`, notificationColumns, whereClause)
	args = append(args, limit, offset)

	items, err := r.queryNotifications(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *NotificationRepository) ListStuckSent(ctx context.Context, before time.Time) ([]*notification.History, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM notification_history
		WHERE status = 'sent' AND sent_at IS NOT NULL AND sent_at <= ?
		ORDER BY sent_at ASC
	`, notificationColumns)

	return r.queryNotifications(ctx, query, encodeTime(before))
}

func (r *NotificationRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM notification_history WHERE created_at < ?", encodeTime(cutoff),
	)
	if err != nil {
		return 0, errors.DatabaseError("Failed to purge notification history", err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get affected rows", err)
	}

	return purged, nil
}

func (r *NotificationRepository) queryNotifications(ctx context.Context, query string, args ...interface{}) ([]*notification.History, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list notification history", err)
	}
	defer rows.Close()

	var items []*notification.History
	for rows.Next() {
		h, err := scanNotification(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan notification history", err)
		}
		items = append(items, h)
	}

	return items, rows.Err()
}

func scanNotification(row rowScanner) (*notification.History, error) {
	var h notification.History
	var channelType, status, priority, responseData, createdAt, updatedAt string
	var sentAt, deliveredAt sql.NullString

	err := row.Scan(
		&h.ID, &h.AlertID, &h.ChannelID, &channelType, &h.Recipient, &h.Subject, &h.Body,
		&status, &h.Attempts, &h.MaxAttempts, &priority, &h.ErrorMessage, &responseData,
		&createdAt, &sentAt, &deliveredAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	h.ChannelType = notification.ChannelType(channelType)
	h.Status = notification.Status(status)
	h.Priority = notification.Priority(priority)
	h.ResponseData = notification.UnmarshalResponseData([]byte(responseData))
	h.CreatedAt = decodeTime(createdAt)
	h.SentAt = decodeNullTime(sentAt)
	h.DeliveredAt = decodeNullTime(deliveredAt)
	h.UpdatedAt = decodeTime(updatedAt)

	return &h, nil
}
