package dispatch

import (
	"context"

	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/pkg/metrics"
)

// Reconcile resolves notifications stuck in sent state by polling channels
// that confirm delivery asynchronously. Channels without a status checker
// are left for the next sweep.
func (d *Dispatcher) Reconcile(ctx context.Context) error {
	cutoff := d.now().Add(-d.cfg.ReconcileAfter)
	stuck, err := d.history.ListStuckSent(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, h := range stuck {
		sender, err := d.registry.Get(h.ChannelType)
		if err != nil {
			continue
		}
		checker, ok := sender.(notification.StatusChecker)
		if !ok {
			continue
		}

		checkCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
		status, err := checker.CheckDeliveryStatus(checkCtx, h.ID, h.ResponseData)
		cancel()
		if err != nil {
			d.logger.WithFields(map[string]interface{}{
				"notification_id": h.ID,
				"channel":         h.ChannelType,
			}).ErrorWithErr(err, "Delivery status check failed")
			continue
		}

		switch status {
		case notification.StatusDelivered:
			h.Status = notification.StatusDelivered
			deliveredAt := d.now()
			h.DeliveredAt = &deliveredAt
		case notification.StatusFailed:
			h.Status = notification.StatusFailed
			h.ErrorMessage = "delivery not confirmed by provider"
		default:
			continue
		}

		if err := d.updateHistory(ctx, h); err != nil {
			continue
		}
		metrics.RecordNotification(string(h.ChannelType), string(h.Status))
	}

	return nil
}

// PurgeExpired removes notification history older than the retention window
func (d *Dispatcher) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := d.now().Add(-d.cfg.RetentionWindow)
	purged, err := d.history.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		d.logger.WithFields(map[string]interface{}{
			"purged": purged,
		}).Info("Notification history purged")
	}
	return purged, nil
}
