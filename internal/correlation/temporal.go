package correlation

import (
	"math"
	"time"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/domain/correlation"
)

// temporalMatches scores candidates by temporal proximity. Confidence decays
// linearly with the time gap and gets multiplied up when severity or source
// match, clamped to 1.0.
func (e *Engine) temporalMatches(a *alert.Alert, candidates []*alert.Alert) []match {
	window := e.cfg.TemporalWindow.Seconds()
	var out []match

	for _, c := range candidates {
		timeDiff := math.Abs(a.StartsAt.Sub(c.StartsAt).Seconds())
		if timeDiff > window {
			continue
		}

		confidence := 1.0 - timeDiff/window
		if a.Severity == c.Severity {
			confidence *= 1.2
		}
		if a.Source == c.Source {
			confidence *= 1.3
		}
		if confidence > 1.0 {
			confidence = 1.0
		}

		if confidence > e.cfg.TemporalThreshold {
			out = append(out, match{
				alertID:    c.ID,
				corrType:   correlation.TypeTemporal,
				confidence: confidence,
			})
		}
	}
	return out
}

// timeBetween returns the non-negative gap between two alerts in seconds
func timeBetween(a, b time.Time) float64 {
	return math.Abs(a.Sub(b).Seconds())
}
