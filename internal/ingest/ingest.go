// Package ingest normalizes raw alert events into alert records. Repeated
// events for one condition mutate the open alert for its fingerprint instead
// of creating duplicates.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
)

// Actions reported by Process
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// Service ingests raw events
type Service struct {
	alerts alert.Repository
	rules  alert.RuleRepository
	logger *logger.Logger
	now    func() time.Time

	// locks serializes create-or-update per fingerprint so simultaneous
	// bursts of one condition cannot race into duplicate open alerts.
	mu    sync.Mutex
	locks map[string]*fingerprintLock
}

type fingerprintLock struct {
	sync.Mutex
	refs int
}

// NewService creates an ingestion service
func NewService(alerts alert.Repository, rules alert.RuleRepository, log *logger.Logger) *Service {
	return &Service{
		alerts: alerts,
		rules:  rules,
		logger: log,
		now:    time.Now,
		locks:  make(map[string]*fingerprintLock),
	}
}

// SetClock overrides the clock, for tests
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Process fingerprints an event and creates or updates the matching alert.
// It returns the alert and whether it was created or updated.
func (s *Service) Process(ctx context.Context, ev *alert.Event) (*alert.Alert, string, error) {
	fp := Fingerprint(ev)

	unlock := s.lockFingerprint(fp)
	defer unlock()

	existing, err := s.alerts.GetOpenByFingerprint(ctx, fp)
	if err != nil && !errors.IsNotFound(err) {
		return nil, "", err
	}

	if existing != nil {
		return s.update(ctx, existing, ev)
	}
	return s.create(ctx, fp, ev)
}

func (s *Service) update(ctx context.Context, a *alert.Alert, ev *alert.Event) (*alert.Alert, string, error) {
	if a.Annotations == nil && len(ev.Annotations) > 0 {
		a.Annotations = make(map[string]string, len(ev.Annotations))
	}
	for k, v := range ev.Annotations {
		a.Annotations[k] = v
	}
	a.Description = ev.Description
	a.UpdatedAt = s.now()

	if err := s.alerts.Update(ctx, a); err != nil {
		return nil, "", err
	}
	if err := s.appendAudit(ctx, a.ID, alert.ActionUpdated); err != nil {
		return nil, "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"alert_id":    a.ID,
		"fingerprint": a.Fingerprint,
	}).Debug("Alert updated from repeated event")

	return a, ActionUpdated, nil
}

func (s *Service) create(ctx context.Context, fp string, ev *alert.Event) (*alert.Alert, string, error) {
	rule, err := s.resolveRule(ctx, ev)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	startsAt := ev.Timestamp
	if startsAt.IsZero() {
		startsAt = now
	}

	a := &alert.Alert{
		ID:          uuid.New().String(),
		Fingerprint: fp,
		Title:       ev.Title,
		Description: ev.Description,
		Severity:    ev.Severity,
		Status:      alert.StatusActive,
		Source:      ev.Source,
		Labels:      ev.Labels,
		Annotations: ev.Annotations,
		StartsAt:    startsAt,
		RuleID:      rule.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.alerts.Create(ctx, a); err != nil {
		return nil, "", err
	}
	if err := s.appendAudit(ctx, a.ID, alert.ActionCreated); err != nil {
		return nil, "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"alert_id":    a.ID,
		"fingerprint": fp,
		"severity":    a.Severity,
		"source":      a.Source,
	}).Info("Alert created")

	return a, ActionCreated, nil
}

// resolveRule finds the rule matching the event's source and title, creating
// one when none exists.
func (s *Service) resolveRule(ctx context.Context, ev *alert.Event) (*alert.Rule, error) {
	rule, err := s.rules.FindBySourceAndTitle(ctx, ev.Source, ev.Title)
	if err == nil {
		return rule, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	rule = &alert.Rule{
		ID:        uuid.New().String(),
		Name:      ev.Title,
		Metric:    ev.Source,
		Operator:  ">",
		Threshold: ev.Threshold,
		Severity:  ev.Severity,
		Source:    ev.Source,
		CreatedAt: s.now(),
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"rule_id": rule.ID,
		"source":  rule.Source,
	}).Info("Alert rule auto-created")

	return rule, nil
}

func (s *Service) appendAudit(ctx context.Context, alertID, action string) error {
	return s.alerts.AppendAudit(ctx, &alert.AuditEvent{
		ID:        uuid.New().String(),
		AlertID:   alertID,
		Action:    action,
		CreatedAt: s.now(),
	})
}

// lockFingerprint acquires the per-fingerprint lock, returning its release
// function. Lock entries are reference counted and removed when idle.
func (s *Service) lockFingerprint(fp string) func() {
	s.mu.Lock()
	l, ok := s.locks[fp]
	if !ok {
		l = &fingerprintLock{}
		s.locks[fp] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, fp)
		}
		s.mu.Unlock()
	}
}
