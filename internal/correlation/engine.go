// Package correlation discovers relationships between concurrently open
// alerts using temporal, spatial, semantic and causal techniques, clusters
// the results and applies feedback-adjusted confidence.
package correlation

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelops/sentinel/internal/config"
	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/domain/correlation"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
	"github.com/sentinelops/sentinel/internal/pkg/metrics"
)

// match is an intermediate scored relationship before persistence
type match struct {
	alertID    string
	corrType   correlation.Type
	confidence float64
}

// Engine runs all correlation techniques against one alert
type Engine struct {
	alerts       alert.Repository
	correlations correlation.Repository
	accuracy     *AccuracyTracker
	cfg          config.CorrelatorConfig
	logger       *logger.Logger
	now          func() time.Time

	causalPatterns map[string][]string
	serviceDeps    map[string][]string
}

// NewEngine creates a correlation engine with the default causal tables
func NewEngine(
	alerts alert.Repository,
	correlations correlation.Repository,
	accuracy *AccuracyTracker,
	cfg config.CorrelatorConfig,
	log *logger.Logger,
) *Engine {
	return &Engine{
		alerts:         alerts,
		correlations:   correlations,
		accuracy:       accuracy,
		cfg:            cfg,
		logger:         log,
		now:            time.Now,
		causalPatterns: DefaultCausalPatterns(),
		serviceDeps:    DefaultServiceDependencies(),
	}
}

// SetCausalTables overrides the causal pattern and service dependency tables
func (e *Engine) SetCausalTables(patterns, deps map[string][]string) {
	if patterns != nil {
		e.causalPatterns = patterns
	}
	if deps != nil {
		e.serviceDeps = deps
	}
}

// SetClock overrides the clock, for tests
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Correlate computes, filters and persists the correlations for an alert.
// Detector failures degrade to a smaller result set; only candidate lookup
// and persistence failures are returned.
func (e *Engine) Correlate(ctx context.Context, a *alert.Alert) ([]*correlation.Correlation, error) {
	since := a.StartsAt.Add(-e.cfg.TemporalWindow)
	candidates, err := e.alerts.ListOpenSince(ctx, since, e.cfg.MaxCandidates)
	if err != nil {
		return nil, err
	}

	// Exclude the alert itself
	filtered := candidates[:0]
	for _, c := range candidates {
		if c.ID != a.ID {
			filtered = append(filtered, c)
		}
	}
	candidates = filtered

	if len(candidates) == 0 {
		return nil, nil
	}

	matches := e.detect(a, candidates)
	matches = dedupe(matches)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].confidence > matches[j].confidence
	})

	labels := dbscan(matches, e.cfg.ClusterEps, e.cfg.ClusterMinPoints)
	matches = reduceClusters(matches, labels)

	results := make([]*correlation.Correlation, 0, len(matches))
	now := e.now()
	for _, m := range matches {
		confidence := m.confidence * (1.0 + e.accuracy.Get(m.corrType)*0.2)
		if confidence > 1.0 {
			confidence = 1.0
		}

		results = append(results, &correlation.Correlation{
			ID:            uuid.New().String(),
			AlertID:       a.ID,
			CorrelationID: m.alertID,
			Type:          m.corrType,
			Confidence:    confidence,
			CreatedAt:     now,
		})
	}

	if len(results) == 0 {
		return nil, nil
	}

	if err := e.correlations.CreateBatch(ctx, results); err != nil {
		return nil, err
	}

	for _, r := range results {
		e.accuracy.RecordResult(ctx, r.Type, r.Confidence)
		metrics.RecordCorrelationFound(string(r.Type))
	}

	e.logger.WithFields(map[string]interface{}{
		"alert_id":   a.ID,
		"candidates": len(candidates),
		"found":      len(results),
	}).Debug("Correlation completed")

	return results, nil
}

// detect runs the four detectors; a panic in one technique degrades to an
// empty set for that technique instead of failing the alert.
func (e *Engine) detect(a *alert.Alert, candidates []*alert.Alert) []match {
	var matches []match
	detectors := []struct {
		name string
		run  func(*alert.Alert, []*alert.Alert) []match
	}{
		{"temporal", e.temporalMatches},
		{"spatial", e.spatialMatches},
		{"semantic", e.semanticMatches},
		{"causal", e.causalMatches},
	}

	for _, d := range detectors {
		found := e.runDetector(d.name, d.run, a, candidates)
		matches = append(matches, found...)
	}
	return matches
}

func (e *Engine) runDetector(name string, run func(*alert.Alert, []*alert.Alert) []match, a *alert.Alert, candidates []*alert.Alert) (out []match) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(map[string]interface{}{
				"detector": name,
				"alert_id": a.ID,
				"panic":    r,
			}).Error("Correlation detector failed")
			out = nil
		}
	}()
	return run(a, candidates)
}

// dedupe collapses matches sharing (counterpart, type), keeping the highest
// confidence.
func dedupe(matches []match) []match {
	type key struct {
		id string
		t  correlation.Type
	}
	best := make(map[key]int)
	var out []match

	for _, m := range matches {
		k := key{m.alertID, m.corrType}
		if i, ok := best[k]; ok {
			if m.confidence > out[i].confidence {
				out[i] = m
			}
			continue
		}
		best[k] = len(out)
		out = append(out, m)
	}
	return out
}
