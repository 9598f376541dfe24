package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
	"github.com/sentinelops/sentinel/internal/repository/postgres"
	"github.com/sentinelops/sentinel/internal/testutil"
)

func newHistory(id string, createdAt time.Time) *notification.History {
	return &notification.History{
		ID:          id,
		AlertID:     "a1",
		ChannelID:   "ch-email",
		ChannelType: notification.ChannelEmail,
		Recipient:   "ops@example.com",
		Subject:     "[high] High CPU usage",
		Body:        "Alert: High CPU usage",
		Status:      notification.StatusPending,
		MaxAttempts: 3,
		Priority:    notification.PriorityHigh,
		CreatedAt:   createdAt,
	}
}

func TestNotificationRepository_CreateGetUpdate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h := newHistory("n1", base)
	if err := repo.Create(ctx, h); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "n1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Recipient != h.Recipient || got.Status != notification.StatusPending || got.Priority != notification.PriorityHigh {
		t.Errorf("GetByID() = %+v, want round-trip of %+v", got, h)
	}
	if got.SentAt != nil || got.DeliveredAt != nil {
		t.Error("GetByID() has delivery timestamps on a pending row")
	}

	sentAt := base.Add(time.Second)
	got.Status = notification.StatusSent
	got.Attempts = 1
	got.SentAt = &sentAt
	got.ResponseData = map[string]string{"message_id": "m-1"}
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	updated, err := repo.GetByID(ctx, "n1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if updated.Status != notification.StatusSent || updated.Attempts != 1 {
		t.Errorf("Update() = %s/%d, want sent/1", updated.Status, updated.Attempts)
	}
	if updated.SentAt == nil || !updated.SentAt.Equal(sentAt) {
		t.Errorf("Update() sent_at = %v, want %v", updated.SentAt, sentAt)
	}
	if updated.ResponseData["message_id"] != "m-1" {
		t.Errorf("Update() response_data = %v, want message_id=m-1", updated.ResponseData)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.IsNotFound(err) {
		t.Errorf("GetByID() error = %v, want not found", err)
	}
}

func TestNotificationRepository_ListByAlert(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.Create(ctx, newHistory("n1", base))
	repo.Create(ctx, newHistory("n2", base.Add(time.Minute)))

	other := newHistory("n3", base)
	other.AlertID = "a2"
	repo.Create(ctx, other)

	got, err := repo.ListByAlert(ctx, "a1")
	if err != nil {
		t.Fatalf("ListByAlert() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ListByAlert() = %d rows, want 2", len(got))
	}
}

func TestNotificationRepository_List_Filters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	delivered := newHistory("n1", base)
	delivered.Status = notification.StatusDelivered
	repo.Create(ctx, delivered)

	failed := newHistory("n2", base.Add(time.Minute))
	failed.Status = notification.StatusFailed
	failed.ChannelType = notification.ChannelSMS
	repo.Create(ctx, failed)

	got, total, err := repo.List(ctx, notification.Filter{Status: notification.StatusFailed}, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].ID != "n2" {
		t.Errorf("List(status=failed) = %d rows total %d, want row n2", len(got), total)
	}

	got, total, err = repo.List(ctx, notification.Filter{ChannelType: notification.ChannelEmail}, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].ID != "n1" {
		t.Errorf("List(channel=email) = %d rows total %d, want row n1", len(got), total)
	}

	from := base.Add(30 * time.Second)
	got, _, err = repo.List(ctx, notification.Filter{From: &from}, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "n2" {
		t.Errorf("List(from) = %d rows, want row n2", len(got))
	}
}

func TestNotificationRepository_ListStuckSent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	stale := newHistory("stale", base.Add(-10*time.Minute))
	stale.Status = notification.StatusSent
	staleSent := base.Add(-10 * time.Minute)
	stale.SentAt = &staleSent
	repo.Create(ctx, stale)

	fresh := newHistory("fresh", base)
	fresh.Status = notification.StatusSent
	freshSent := base.Add(-10 * time.Second)
	fresh.SentAt = &freshSent
	repo.Create(ctx, fresh)

	pending := newHistory("pending", base)
	repo.Create(ctx, pending)

	got, err := repo.ListStuckSent(ctx, base.Add(-time.Minute))
	if err != nil {
		t.Fatalf("ListStuckSent() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "stale" {
		t.Errorf("ListStuckSent() = %d rows, want row stale", len(got))
	}
}

func TestNotificationRepository_PurgeOlderThan(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.Create(ctx, newHistory("old", base.Add(-48*time.Hour)))
	repo.Create(ctx, newHistory("recent", base.Add(-time.Hour)))

	purged, err := repo.PurgeOlderThan(ctx, base.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeOlderThan() error = %v", err)
	}
	if purged != 1 {
		t.Errorf("PurgeOlderThan() = %d, want 1", purged)
	}
	if _, err := repo.GetByID(ctx, "old"); !errors.IsNotFound(err) {
		t.Errorf("GetByID(old) error = %v after purge, want not found", err)
	}
	if _, err := repo.GetByID(ctx, "recent"); err != nil {
		t.Errorf("GetByID(recent) error = %v, want row kept", err)
	}
}
