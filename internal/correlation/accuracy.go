package correlation

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/sentinelops/sentinel/internal/cache"
	"github.com/sentinelops/sentinel/internal/domain/correlation"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
)

// accuracyKey is the cache hash holding per-type feedback counters
const accuracyKey = "correlation:accuracy"

// DefaultAccuracy returns the feedback-free historical accuracy per
// correlation type.
func DefaultAccuracy() map[correlation.Type]float64 {
	return map[correlation.Type]float64{
		correlation.TypeTemporal: 0.8,
		correlation.TypeSpatial:  0.7,
		correlation.TypeSemantic: 0.6,
		correlation.TypeCausal:   0.5,
	}
}

// AccuracyTracker maintains the per-type historical accuracy used to boost
// correlation confidence. Counters live in the cache so every engine
// instance shares them; the in-memory view is refreshed periodically.
type AccuracyTracker struct {
	cache  cache.Cache
	cutoff float64
	logger *logger.Logger

	mu       sync.RWMutex
	accuracy map[correlation.Type]float64
}

// NewAccuracyTracker creates a tracker seeded with the default accuracy
// table. cutoff is the confidence above which an unreviewed correlation
// counts as accurate.
func NewAccuracyTracker(c cache.Cache, cutoff float64, log *logger.Logger) *AccuracyTracker {
	return &AccuracyTracker{
		cache:    c,
		cutoff:   cutoff,
		logger:   log,
		accuracy: DefaultAccuracy(),
	}
}

// Get returns the current accuracy for a correlation type
func (t *AccuracyTracker) Get(corrType correlation.Type) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.accuracy[corrType]
}

// RecordResult seeds the counters when a correlation is persisted: it counts
// toward the total and, above the cutoff, as accurate until explicit
// feedback says otherwise.
func (t *AccuracyTracker) RecordResult(ctx context.Context, corrType correlation.Type, confidence float64) {
	if _, err := t.cache.HIncrBy(ctx, accuracyKey, totalField(corrType), 1); err != nil {
		t.logger.WithError(err).Warn("Accuracy counter update failed")
		return
	}
	if confidence >= t.cutoff {
		if _, err := t.cache.HIncrBy(ctx, accuracyKey, accurateField(corrType), 1); err != nil {
			t.logger.WithError(err).Warn("Accuracy counter update failed")
		}
	}
}

// Feedback applies an explicit accuracy judgment for a correlation type
func (t *AccuracyTracker) Feedback(ctx context.Context, corrType correlation.Type, isAccurate bool) error {
	if _, err := t.cache.HIncrBy(ctx, accuracyKey, totalField(corrType), 1); err != nil {
		return err
	}
	if isAccurate {
		if _, err := t.cache.HIncrBy(ctx, accuracyKey, accurateField(corrType), 1); err != nil {
			return err
		}
	}
	return nil
}

// Refresh recomputes the in-memory accuracy table from the cached counters.
// Types without any recorded outcomes keep their defaults.
func (t *AccuracyTracker) Refresh(ctx context.Context) error {
	counters, err := t.cache.HGetAll(ctx, accuracyKey)
	if err != nil {
		return err
	}

	updated := DefaultAccuracy()
	for _, corrType := range correlation.Types() {
		total, _ := strconv.ParseInt(counters[totalField(corrType)], 10, 64)
		if total == 0 {
			continue
		}
		accurate, _ := strconv.ParseInt(counters[accurateField(corrType)], 10, 64)
		updated[corrType] = float64(accurate) / float64(total)
	}

	t.mu.Lock()
	t.accuracy = updated
	t.mu.Unlock()

	t.logger.WithFields(map[string]interface{}{
		"temporal": updated[correlation.TypeTemporal],
		"spatial":  updated[correlation.TypeSpatial],
		"semantic": updated[correlation.TypeSemantic],
		"causal":   updated[correlation.TypeCausal],
	}).Debug("Correlation accuracy refreshed")

	return nil
}

func totalField(t correlation.Type) string {
	return fmt.Sprintf("%s:total", t)
}

func accurateField(t correlation.Type) string {
	return fmt.Sprintf("%s:accurate", t)
}
