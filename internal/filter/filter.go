// Package filter decides whether an alert is worth correlating and notifying
// at all. A filtered alert is still persisted; only the downstream pipeline
// is skipped.
package filter

import (
	"context"
	"fmt"
	"time"

	"github.com/sentinelops/sentinel/internal/cache"
	"github.com/sentinelops/sentinel/internal/config"
	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
	"github.com/sentinelops/sentinel/internal/pkg/metrics"
)

// Filter reasons
const (
	ReasonBurst     = "burst_protection"
	ReasonDuplicate = "duplicate"
	ReasonNoise     = "noise_score"
	ReasonSeverity  = "severity_gate"
)

// Result is the outcome of the filter chain
type Result struct {
	Filtered bool    `json:"filtered"`
	Reason   string  `json:"reason,omitempty"`
	Score    float64 `json:"score,omitempty"`
}

// Filter runs the burst, duplicate, noise and severity checks in order,
// short-circuiting on the first failure.
type Filter struct {
	alerts alert.Repository
	cache  cache.Cache
	cfg    config.FilterConfig
	logger *logger.Logger
	now    func() time.Time
}

// New creates a smart filter
func New(alerts alert.Repository, c cache.Cache, cfg config.FilterConfig, log *logger.Logger) *Filter {
	return &Filter{
		alerts: alerts,
		cache:  c,
		cfg:    cfg,
		logger: log,
		now:    time.Now,
	}
}

// SetClock overrides the clock, for tests
func (f *Filter) SetClock(now func() time.Time) {
	f.now = now
}

// Check runs all four checks against an alert
func (f *Filter) Check(ctx context.Context, a *alert.Alert) (*Result, error) {
	if r := f.checkBurst(ctx, a); r.Filtered {
		return f.logResult(a, r), nil
	}
	if r, err := f.checkDuplicate(ctx, a); err != nil {
		return nil, err
	} else if r.Filtered {
		return f.logResult(a, r), nil
	}
	if r, err := f.checkNoise(ctx, a); err != nil {
		return nil, err
	} else if r.Filtered {
		return f.logResult(a, r), nil
	}
	if r, err := f.checkSeverityGate(ctx, a); err != nil {
		return nil, err
	} else if r.Filtered {
		return f.logResult(a, r), nil
	}
	return &Result{}, nil
}

// checkBurst enforces the per-source per-minute event budget. The counter
// lives in the cache keyed by the minute boundary; a cache failure fails
// open so an unavailable cache never blocks legitimate alerts.
func (f *Filter) checkBurst(ctx context.Context, a *alert.Alert) *Result {
	key := fmt.Sprintf("burst:%s:%s", a.Source, f.now().UTC().Format("200601021504"))

	count, err := f.cache.IncrWithExpire(ctx, key, 2*time.Minute)
	if err != nil {
		f.logger.WithError(err).Warn("Burst counter unavailable, failing open")
		return &Result{}
	}

	if count > int64(f.cfg.BurstThreshold) {
		return &Result{Filtered: true, Reason: ReasonBurst}
	}
	return &Result{}
}

// checkDuplicate filters the alert when another alert with its fingerprint
// was created inside the trailing duplicate window.
func (f *Filter) checkDuplicate(ctx context.Context, a *alert.Alert) (*Result, error) {
	since := f.now().Add(-f.cfg.DuplicateWindow)
	recent, err := f.alerts.ListByFingerprintSince(ctx, a.Fingerprint, since)
	if err != nil {
		return nil, err
	}

	for _, other := range recent {
		if other.ID != a.ID {
			return &Result{Filtered: true, Reason: ReasonDuplicate}, nil
		}
	}
	return &Result{}, nil
}

// checkNoise computes the rule's historical noise score over the trailing
// noise window: rules that fire often and rarely get resolved score high.
func (f *Filter) checkNoise(ctx context.Context, a *alert.Alert) (*Result, error) {
	if a.RuleID == "" {
		return &Result{}, nil
	}

	since := f.now().Add(-f.cfg.NoiseWindow)
	history, err := f.alerts.ListByRuleSince(ctx, a.RuleID, since)
	if err != nil {
		return nil, err
	}

	score := NoiseScore(history)
	if score > f.cfg.NoiseThreshold {
		return &Result{Filtered: true, Reason: ReasonNoise, Score: score}, nil
	}
	return &Result{}, nil
}

// NoiseScore computes (1 - resolvedRatio) * min(total/10, 1), clamped to
// [0,1]. Zero history scores zero.
func NoiseScore(history []*alert.Alert) float64 {
	total := len(history)
	if total == 0 {
		return 0
	}

	resolved := 0
	for _, a := range history {
		if a.Status == alert.StatusResolved {
			resolved++
		}
	}

	frequency := float64(total) / 10.0
	if frequency > 1.0 {
		frequency = 1.0
	}

	score := (1.0 - float64(resolved)/float64(total)) * frequency
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// checkSeverityGate raises the severity bar as the number of active alerts
// grows, so the platform gets progressively more conservative under load.
func (f *Filter) checkSeverityGate(ctx context.Context, a *alert.Alert) (*Result, error) {
	active, err := f.alerts.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	metrics.SetActiveAlerts(active)

	required := 0.2
	switch {
	case active > 100:
		required = 0.6
	case active > 50:
		required = 0.4
	}

	weight := alert.SeverityWeight(a.Severity)
	if weight <= required {
		return &Result{Filtered: true, Reason: ReasonSeverity, Score: weight}, nil
	}
	return &Result{}, nil
}

func (f *Filter) logResult(a *alert.Alert, r *Result) *Result {
	f.logger.WithFields(map[string]interface{}{
		"alert_id": a.ID,
		"source":   a.Source,
		"reason":   r.Reason,
	}).Info("Alert filtered")
	return r
}
