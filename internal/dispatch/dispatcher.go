// Package dispatch delivers planned notifications through channel senders
// with per-priority worker lanes, per-channel rate limits and retry with
// exponential backoff.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelops/sentinel/internal/channels"
	"github.com/sentinelops/sentinel/internal/config"
	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
	"github.com/sentinelops/sentinel/internal/pkg/metrics"
)

// Retry backoff bounds in seconds
const (
	retryBaseDelay = 30
	retryMaxDelay  = 300
)

// Dispatcher owns the delivery queue and its worker lanes
type Dispatcher struct {
	history  notification.Repository
	provider notification.ChannelProvider
	registry *channels.Registry
	limiter  *RateLimiter
	queue    *laneQueue
	cfg      config.DispatchConfig
	logger   *logger.Logger
	now      func() time.Time

	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// New creates a dispatcher
func New(
	history notification.Repository,
	provider notification.ChannelProvider,
	registry *channels.Registry,
	limiter *RateLimiter,
	cfg config.DispatchConfig,
	log *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		history:  history,
		provider: provider,
		registry: registry,
		limiter:  limiter,
		queue:    newLaneQueue(cfg.QueueSize),
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
	}
}

// SetClock overrides the clock, for tests
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Start launches the worker pools, one pool per priority lane
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	for _, p := range notification.Priorities() {
		for i := 0; i < d.cfg.WorkersPerLane; i++ {
			d.wg.Add(1)
			go d.worker(ctx, p)
		}
	}
}

// Stop closes the queues and waits for in-flight deliveries to finish
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.started = false
	d.mu.Unlock()

	d.queue.close()
	d.wg.Wait()
}

// Dispatch plans deliveries for every channel in the plan: one pending
// history row per channel, then the item is queued into its priority lane.
// Returns the number of notifications enqueued.
func (d *Dispatcher) Dispatch(ctx context.Context, a *alert.Alert, plan *notification.Plan) (int, error) {
	return d.enqueueChannels(ctx, a, plan.Channels, plan.Priority, time.Duration(plan.DelaySeconds)*time.Second)
}

// EnqueueChannels queues deliveries outside a plan, used by the escalation
// scheduler for delayed re-notification levels.
func (d *Dispatcher) EnqueueChannels(ctx context.Context, a *alert.Alert, channelTypes []notification.ChannelType, priority notification.Priority) (int, error) {
	return d.enqueueChannels(ctx, a, channelTypes, priority, 0)
}

func (d *Dispatcher) enqueueChannels(ctx context.Context, a *alert.Alert, channelTypes []notification.ChannelType, priority notification.Priority, delay time.Duration) (int, error) {
	enqueued := 0
	for _, t := range channelTypes {
		ch, err := d.provider.GetByType(ctx, t)
		if err != nil {
			if errors.IsNotFound(err) {
				d.logger.WithFields(map[string]interface{}{
					"alert_id": a.ID,
					"channel":  t,
				}).Debug("No channel configured, skipping")
				continue
			}
			return enqueued, err
		}

		subjectTmpl, bodyTmpl := channelTemplates(ch)
		vars := templateVars(a, nil)

		h := &notification.History{
			ID:          uuid.New().String(),
			AlertID:     a.ID,
			ChannelID:   ch.ID,
			ChannelType: ch.Type,
			Recipient:   ch.Recipient,
			Subject:     Render(subjectTmpl, vars),
			Body:        Render(bodyTmpl, vars),
			Status:      notification.StatusPending,
			MaxAttempts: d.cfg.MaxAttempts,
			Priority:    priority,
			CreatedAt:   d.now(),
		}
		if err := d.history.Create(ctx, h); err != nil {
			return enqueued, err
		}
		metrics.RecordNotification(string(ch.Type), string(notification.StatusPending))

		item := &deliveryItem{
			history:   h,
			channel:   ch,
			alert:     a,
			notBefore: d.now().Add(delay),
		}
		if err := d.queue.push(item); err != nil {
			d.failImmediately(ctx, h, "delivery queue full")
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// worker consumes one priority lane until the queue closes or the context
// is cancelled.
func (d *Dispatcher) worker(ctx context.Context, priority notification.Priority) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-d.queue.lane(priority):
			if !ok {
				return
			}
			d.process(ctx, item)
		}
	}
}

// process waits out the item's scheduled delay, then attempts delivery
func (d *Dispatcher) process(ctx context.Context, item *deliveryItem) {
	if wait := item.notBefore.Sub(d.now()); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	h := item.history

	// Rate-limit rejection abandons this cycle without consuming a retry
	if !d.limiter.Allow(ctx, h.ChannelType) {
		d.failImmediately(ctx, h, "rate limit exceeded for channel")
		return
	}

	sender, err := d.registry.Get(h.ChannelType)
	if err != nil {
		d.failImmediately(ctx, h, err.Error())
		return
	}

	h.Attempts++
	h.Status = notification.StatusSent
	sentAt := d.now()
	h.SentAt = &sentAt
	if err := d.updateHistory(ctx, h); err != nil {
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	start := d.now()
	result, err := sender.Send(sendCtx, h.Recipient, h.Subject, h.Body, item.channel.Configuration)
	cancel()
	metrics.RecordSendDuration(string(h.ChannelType), d.now().Sub(start))

	if err == nil && result != nil && result.Success {
		h.Status = notification.StatusDelivered
		deliveredAt := d.now()
		h.DeliveredAt = &deliveredAt
		h.ResponseData = result.ResponseData
		h.ErrorMessage = ""
		if err := d.updateHistory(ctx, h); err != nil {
			return
		}
		metrics.RecordNotification(string(h.ChannelType), string(notification.StatusDelivered))
		return
	}

	// Send failure, including timeouts
	errMsg := "send failed"
	if err != nil {
		errMsg = err.Error()
	} else if result != nil && result.Error != "" {
		errMsg = result.Error
	}
	h.ErrorMessage = errMsg
	if result != nil {
		h.ResponseData = result.ResponseData
	}

	if h.Attempts < h.MaxAttempts {
		h.Status = notification.StatusRetry
		if err := d.updateHistory(ctx, h); err != nil {
			return
		}
		metrics.RecordNotification(string(h.ChannelType), string(notification.StatusRetry))

		item.notBefore = d.now().Add(RetryDelay(h.Attempts))
		if err := d.queue.push(item); err != nil {
			d.failImmediately(ctx, h, err.Error())
		}
		return
	}

	h.Status = notification.StatusFailed
	if err := d.updateHistory(ctx, h); err != nil {
		return
	}
	metrics.RecordNotification(string(h.ChannelType), string(notification.StatusFailed))

	d.logger.WithFields(map[string]interface{}{
		"notification_id": h.ID,
		"alert_id":        h.AlertID,
		"channel":         h.ChannelType,
		"attempts":        h.Attempts,
	}).Warn("Notification failed after exhausting retries")
}

// RetryDelay returns the backoff before the next attempt after the given
// number of failed attempts: 30, 60, 120, 240, capped at 300 seconds.
func RetryDelay(attempts int) time.Duration {
	delay := retryBaseDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= retryMaxDelay {
			return retryMaxDelay * time.Second
		}
	}
	return time.Duration(delay) * time.Second
}

// failImmediately marks a history row failed without consuming an attempt
func (d *Dispatcher) failImmediately(ctx context.Context, h *notification.History, reason string) {
	h.Status = notification.StatusFailed
	h.ErrorMessage = reason
	if err := d.updateHistory(ctx, h); err != nil {
		return
	}
	metrics.RecordNotification(string(h.ChannelType), string(notification.StatusFailed))
}

func (d *Dispatcher) updateHistory(ctx context.Context, h *notification.History) error {
	h.UpdatedAt = d.now()
	if err := d.history.Update(ctx, h); err != nil {
		d.logger.WithFields(map[string]interface{}{
			"notification_id": h.ID,
		}).ErrorWithErr(err, "Failed to update notification history")
		return err
	}
	return nil
}

// QueueDepths reports the current depth of each priority lane
func (d *Dispatcher) QueueDepths() map[notification.Priority]int {
	out := make(map[notification.Priority]int, len(d.queue.lanes))
	for p, lane := range d.queue.lanes {
		out[p] = len(lane)
	}
	return out
}
