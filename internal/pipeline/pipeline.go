// Package pipeline orchestrates the alert flow: ingestion, smart filtering,
// correlation, strategy planning and notification dispatch.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelops/sentinel/internal/correlation"
	"github.com/sentinelops/sentinel/internal/dispatch"
	"github.com/sentinelops/sentinel/internal/domain/alert"
	domaincorr "github.com/sentinelops/sentinel/internal/domain/correlation"
	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/escalation"
	"github.com/sentinelops/sentinel/internal/filter"
	"github.com/sentinelops/sentinel/internal/ingest"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
	"github.com/sentinelops/sentinel/internal/pkg/metrics"
	"github.com/sentinelops/sentinel/internal/pkg/validator"
	"github.com/sentinelops/sentinel/internal/strategy"
)

// ProcessResult is the outcome of processing one alert event
type ProcessResult struct {
	AlertID               string             `json:"alert_id"`
	Action                string             `json:"action"`
	Fingerprint           string             `json:"fingerprint"`
	CorrelationsFound     int                `json:"correlations_found"`
	NotificationsSent     int                `json:"notifications_sent"`
	ProcessingTimeSeconds float64            `json:"processing_time_seconds"`
	Filtered              bool               `json:"filtered"`
	FilterReason          string             `json:"filter_reason,omitempty"`
	Strategy              *notification.Plan `json:"notification_strategy,omitempty"`
}

// AckResult is the outcome of acknowledging an alert
type AckResult struct {
	AlertID        string    `json:"alert_id"`
	Status         string    `json:"status"`
	AcknowledgedAt time.Time `json:"acknowledged_at"`
	AcknowledgedBy string    `json:"acknowledged_by"`
}

// ResolveResult is the outcome of resolving an alert
type ResolveResult struct {
	AlertID         string    `json:"alert_id"`
	Status          string    `json:"status"`
	ResolvedAt      time.Time `json:"resolved_at"`
	ResolvedBy      string    `json:"resolved_by"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// Service wires the pipeline stages together
type Service struct {
	ingest       *ingest.Service
	filter       *filter.Filter
	correlator   *correlation.Engine
	planner      *strategy.Planner
	dispatcher   *dispatch.Dispatcher
	hook         escalation.Hook
	alerts       alert.Repository
	correlations domaincorr.Repository
	accuracy     *correlation.AccuracyTracker
	validate     *validator.Validator
	logger       *logger.Logger
	now          func() time.Time
}

// New creates the pipeline service
func New(
	ing *ingest.Service,
	flt *filter.Filter,
	correlator *correlation.Engine,
	planner *strategy.Planner,
	dispatcher *dispatch.Dispatcher,
	hook escalation.Hook,
	alerts alert.Repository,
	correlations domaincorr.Repository,
	accuracy *correlation.AccuracyTracker,
	log *logger.Logger,
) *Service {
	return &Service{
		ingest:       ing,
		filter:       flt,
		correlator:   correlator,
		planner:      planner,
		dispatcher:   dispatcher,
		hook:         hook,
		alerts:       alerts,
		correlations: correlations,
		accuracy:     accuracy,
		validate:     validator.New(),
		logger:       log,
		now:          time.Now,
	}
}

// SetClock overrides the clock, for tests
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ProcessAlertEvent runs one event through the full pipeline. The alert is
// always persisted; a filtered alert skips correlation and notification.
// Correlation failures degrade to an empty correlation set.
func (s *Service) ProcessAlertEvent(ctx context.Context, ev *alert.Event) (*ProcessResult, error) {
	start := s.now()

	if problems := s.validate.Validate(ev); len(problems) > 0 {
		return nil, errors.ValidationError("invalid alert event", problems)
	}

	a, action, err := s.ingest.Process(ctx, ev)
	if err != nil {
		return nil, err
	}
	metrics.RecordAlertProcessed(action, a.Severity)

	result := &ProcessResult{
		AlertID:     a.ID,
		Action:      action,
		Fingerprint: a.Fingerprint,
	}

	filterResult, err := s.filter.Check(ctx, a)
	if err != nil {
		return nil, err
	}
	if filterResult.Filtered {
		metrics.RecordAlertFiltered(filterResult.Reason)
		result.Filtered = true
		result.FilterReason = filterResult.Reason
		result.ProcessingTimeSeconds = s.now().Sub(start).Seconds()
		metrics.RecordProcessingDuration(s.now().Sub(start))
		return result, nil
	}

	correlations, err := s.correlator.Correlate(ctx, a)
	if err != nil {
		// Correlation is best-effort: a failure never blocks
		// notification of the alert itself.
		s.logger.WithFields(map[string]interface{}{
			"alert_id": a.ID,
		}).ErrorWithErr(err, "Correlation failed, continuing without correlations")
		correlations = nil
	}
	result.CorrelationsFound = len(correlations)

	plan := s.planner.Plan(a, correlations)
	result.Strategy = plan

	sent, err := s.dispatcher.Dispatch(ctx, a, plan)
	if err != nil {
		return nil, err
	}
	result.NotificationsSent = sent

	if plan.Escalation != nil {
		if err := s.hook.StartEscalation(ctx, a, plan.Escalation); err != nil {
			s.logger.WithFields(map[string]interface{}{
				"alert_id": a.ID,
			}).ErrorWithErr(err, "Failed to start escalation")
		}
	}

	elapsed := s.now().Sub(start)
	result.ProcessingTimeSeconds = elapsed.Seconds()
	metrics.RecordProcessingDuration(elapsed)

	return result, nil
}

// AcknowledgeAlert marks an alert acknowledged and stops its escalation.
// Acknowledging an already acknowledged alert is idempotent.
func (s *Service) AcknowledgeAlert(ctx context.Context, alertID, userID string) (*AckResult, error) {
	a, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}

	if a.Status == alert.StatusResolved {
		return nil, errors.Conflict("alert is already resolved")
	}

	if a.Status != alert.StatusAcknowledged {
		now := s.now()
		a.Status = alert.StatusAcknowledged
		a.AcknowledgedAt = &now
		a.AcknowledgedBy = userID
		a.UpdatedAt = now

		if err := s.alerts.Update(ctx, a); err != nil {
			return nil, err
		}
		if err := s.appendAudit(ctx, a.ID, alert.ActionAcknowledged, userID); err != nil {
			return nil, err
		}
	}

	if err := s.hook.StopEscalation(ctx, a.ID); err != nil {
		return nil, err
	}

	return &AckResult{
		AlertID:        a.ID,
		Status:         a.Status,
		AcknowledgedAt: *a.AcknowledgedAt,
		AcknowledgedBy: a.AcknowledgedBy,
	}, nil
}

// ResolveAlert marks an alert resolved and stops its escalation
func (s *Service) ResolveAlert(ctx context.Context, alertID, userID string) (*ResolveResult, error) {
	a, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}

	if a.Status != alert.StatusResolved {
		now := s.now()
		a.Status = alert.StatusResolved
		a.ResolvedAt = &now
		a.ResolvedBy = userID
		a.EndsAt = &now
		a.UpdatedAt = now

		if err := s.alerts.Update(ctx, a); err != nil {
			return nil, err
		}
		if err := s.appendAudit(ctx, a.ID, alert.ActionResolved, userID); err != nil {
			return nil, err
		}
	}

	if err := s.hook.StopEscalation(ctx, a.ID); err != nil {
		return nil, err
	}

	return &ResolveResult{
		AlertID:         a.ID,
		Status:          a.Status,
		ResolvedAt:      *a.ResolvedAt,
		ResolvedBy:      a.ResolvedBy,
		DurationSeconds: a.ResolvedAt.Sub(a.StartsAt).Seconds(),
	}, nil
}

// FeedbackCorrelation applies an explicit accuracy judgment to a recorded
// correlation, feeding the confidence-boost tables.
func (s *Service) FeedbackCorrelation(ctx context.Context, correlationID string, isAccurate bool) error {
	corr, err := s.correlations.GetByID(ctx, correlationID)
	if err != nil {
		return err
	}
	return s.accuracy.Feedback(ctx, corr.Type, isAccurate)
}

func (s *Service) appendAudit(ctx context.Context, alertID, action, actor string) error {
	return s.alerts.AppendAudit(ctx, &alert.AuditEvent{
		ID:        uuid.New().String(),
		AlertID:   alertID,
		Action:    action,
		Actor:     actor,
		CreatedAt: s.now(),
	})
}
