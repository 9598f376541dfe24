package correlation

import (
	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/domain/correlation"
)

// spatialMatches scores candidates by where they come from: source equality,
// label overlap and a shared service identity.
func (e *Engine) spatialMatches(a *alert.Alert, candidates []*alert.Alert) []match {
	var out []match

	for _, c := range candidates {
		score := spatialScore(a, c)
		if score > e.cfg.SpatialThreshold {
			if score > 1.0 {
				score = 1.0
			}
			out = append(out, match{
				alertID:    c.ID,
				corrType:   correlation.TypeSpatial,
				confidence: score,
			})
		}
	}
	return out
}

// spatialScore combines three weighted similarity terms: source (0.4 when
// equal, else scaled token overlap), label agreement (0.3) and service
// identity (0.3 when equal, else scaled string similarity).
func spatialScore(a, b *alert.Alert) float64 {
	var score float64

	if a.Source == b.Source {
		score += 0.4
	} else {
		score += 0.3 * tokenSimilarity(a.Source, b.Source)
	}

	score += 0.3 * labelAgreement(a.Labels, b.Labels)

	svcA, svcB := a.Service(), b.Service()
	if svcA != "" && svcB != "" {
		if svcA == svcB {
			score += 0.3
		} else {
			score += 0.2 * tokenSimilarity(svcA, svcB)
		}
	}

	return score
}

// labelAgreement is the ratio of keys carrying equal values in both label
// sets over the union of keys. Two empty label sets agree on nothing.
func labelAgreement(a, b map[string]string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	union := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		union[k] = struct{}{}
	}
	for k := range b {
		union[k] = struct{}{}
	}

	matching := 0
	for k, va := range a {
		if vb, ok := b[k]; ok && va == vb {
			matching++
		}
	}

	return float64(matching) / float64(len(union))
}
