// Package escalation schedules delayed re-notification for unacknowledged
// alerts. The Hook interface is the boundary the pipeline talks to; the
// in-process Scheduler is the default implementation.
package escalation

import (
	"context"
	"sync"
	"time"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
)

// Hook is the escalation-policy executor boundary
type Hook interface {
	// StartEscalation schedules the policy's levels for an alert
	StartEscalation(ctx context.Context, a *alert.Alert, policy *notification.EscalationPolicy) error

	// StopEscalation cancels any in-flight escalation for an alert.
	// Calling it for an alert without an escalation is a no-op.
	StopEscalation(ctx context.Context, alertID string) error
}

// Notifier is the delivery capability the scheduler escalates through
type Notifier interface {
	EnqueueChannels(ctx context.Context, a *alert.Alert, channels []notification.ChannelType, priority notification.Priority) (int, error)
}

// Scheduler is a timer-based in-process Hook implementation
type Scheduler struct {
	notifier Notifier
	logger   *logger.Logger

	mu     sync.Mutex
	active map[string]*escalationRun
}

// escalationRun identifies one scheduled escalation so a finishing run can
// tell whether the registered escalation is still its own.
type escalationRun struct {
	cancel context.CancelFunc
}

// NewScheduler creates an escalation scheduler
func NewScheduler(notifier Notifier, log *logger.Logger) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		logger:   log,
		active:   make(map[string]*escalationRun),
	}
}

// StartEscalation walks the policy levels after the escalate-after delay.
// Starting an alert that is already escalating restarts its schedule.
func (s *Scheduler) StartEscalation(ctx context.Context, a *alert.Alert, policy *notification.EscalationPolicy) error {
	if policy == nil || len(policy.Levels) == 0 {
		return nil
	}

	s.mu.Lock()
	if prev, ok := s.active[a.ID]; ok {
		prev.cancel()
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	run := &escalationRun{cancel: cancel}
	s.active[a.ID] = run
	s.mu.Unlock()

	go s.run(runCtx, run, a, policy)

	s.logger.WithFields(map[string]interface{}{
		"alert_id": a.ID,
		"policy":   policy.Name,
	}).Info("Escalation started")

	return nil
}

// StopEscalation cancels an alert's escalation; safe to call repeatedly
func (s *Scheduler) StopEscalation(ctx context.Context, alertID string) error {
	s.mu.Lock()
	run, ok := s.active[alertID]
	if ok {
		delete(s.active, alertID)
	}
	s.mu.Unlock()

	if ok {
		run.cancel()
		s.logger.WithFields(map[string]interface{}{
			"alert_id": alertID,
		}).Info("Escalation stopped")
	}
	return nil
}

// run sleeps through the policy timeline, firing each level's channels.
// Level delays are relative to the escalation start.
func (s *Scheduler) run(ctx context.Context, self *escalationRun, a *alert.Alert, policy *notification.EscalationPolicy) {
	start := time.Now()

	// Levels at offset zero fire only once the escalate-after grace
	// period passes unacknowledged.
	if !s.sleep(ctx, policy.EscalateAfter) {
		return
	}

	for _, level := range policy.Levels {
		wait := policy.EscalateAfter + level.After - time.Since(start)
		if !s.sleep(ctx, wait) {
			return
		}

		if _, err := s.notifier.EnqueueChannels(ctx, a, level.Channels, notification.PriorityUrgent); err != nil {
			s.logger.WithFields(map[string]interface{}{
				"alert_id": a.ID,
			}).ErrorWithErr(err, "Escalation level dispatch failed")
		}
	}

	// A restart may have replaced this run; only unregister our own entry.
	s.mu.Lock()
	if s.active[a.ID] == self {
		delete(s.active, a.ID)
	}
	s.mu.Unlock()
}

func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
