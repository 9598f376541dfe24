package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/sentinelops/sentinel/internal/cache"
	"github.com/sentinelops/sentinel/internal/channels"
	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/testutil"
)

func stuckRow(id string, sentAt time.Time) *notification.History {
	return &notification.History{
		ID:          id,
		AlertID:     "a1",
		ChannelType: notification.ChannelSMS,
		Recipient:   "+15550100",
		Status:      notification.StatusSent,
		Attempts:    1,
		MaxAttempts: 3,
		Priority:    notification.PriorityNormal,
		CreatedAt:   sentAt,
		SentAt:      &sentAt,
	}
}

func newReconcileFixture(t *testing.T, sender notification.Sender) (*Dispatcher, *testutil.MockNotificationRepository) {
	t.Helper()

	history := testutil.NewMockNotificationRepository()
	registry := channels.NewRegistry()
	if err := registry.Register(sender); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	limiter := NewRateLimiter(cache.NewMemory(), true, testutil.NewLogger())
	provider := testutil.NewMockChannelProvider()
	d := New(history, provider, registry, limiter, testDispatchConfig(), testutil.NewLogger())
	return d, history
}

func TestDispatcher_Reconcile_Delivered(t *testing.T) {
	sender := testutil.NewMockCheckingSender(notification.ChannelSMS, notification.StatusDelivered)
	d, history := newReconcileFixture(t, sender)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d.SetClock(func() time.Time { return now })

	history.Create(ctx, stuckRow("n1", now.Add(-5*time.Minute)))

	if err := d.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	h, _ := history.GetByID(ctx, "n1")
	if h.Status != notification.StatusDelivered {
		t.Errorf("status = %s, want %s", h.Status, notification.StatusDelivered)
	}
	if h.DeliveredAt == nil {
		t.Error("delivered_at not set")
	}
}

func TestDispatcher_Reconcile_NotConfirmed(t *testing.T) {
	sender := testutil.NewMockCheckingSender(notification.ChannelSMS, notification.StatusFailed)
	d, history := newReconcileFixture(t, sender)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d.SetClock(func() time.Time { return now })

	history.Create(ctx, stuckRow("n1", now.Add(-5*time.Minute)))

	if err := d.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	h, _ := history.GetByID(ctx, "n1")
	if h.Status != notification.StatusFailed {
		t.Errorf("status = %s, want %s", h.Status, notification.StatusFailed)
	}
	if h.ErrorMessage == "" {
		t.Error("error message not set on unconfirmed delivery")
	}
}

func TestDispatcher_Reconcile_SkipsRecentAndPlainSenders(t *testing.T) {
	// A sender without status checking leaves its rows alone.
	sender := testutil.NewMockSender(notification.ChannelSMS)
	d, history := newReconcileFixture(t, sender)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d.SetClock(func() time.Time { return now })

	history.Create(ctx, stuckRow("old", now.Add(-5*time.Minute)))
	history.Create(ctx, stuckRow("fresh", now.Add(-10*time.Second)))

	if err := d.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	for _, id := range []string{"old", "fresh"} {
		h, _ := history.GetByID(ctx, id)
		if h.Status != notification.StatusSent {
			t.Errorf("status[%s] = %s, want untouched %s", id, h.Status, notification.StatusSent)
		}
	}
}

func TestDispatcher_PurgeExpired(t *testing.T) {
	sender := testutil.NewMockSender(notification.ChannelSMS)
	d, history := newReconcileFixture(t, sender)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d.SetClock(func() time.Time { return now })

	old := stuckRow("old", now.Add(-48*time.Hour))
	old.CreatedAt = now.Add(-48 * time.Hour)
	recent := stuckRow("recent", now.Add(-time.Hour))
	recent.CreatedAt = now.Add(-time.Hour)
	history.Create(ctx, old)
	history.Create(ctx, recent)

	purged, err := d.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired() error = %v", err)
	}
	if purged != 1 {
		t.Errorf("PurgeExpired() = %d, want 1", purged)
	}
	if _, err := history.GetByID(ctx, "old"); err == nil {
		t.Error("old row still present after purge")
	}
	if _, err := history.GetByID(ctx, "recent"); err != nil {
		t.Errorf("recent row purged: %v", err)
	}
}
