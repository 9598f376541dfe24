package correlation

import (
	"strings"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/domain/correlation"
)

// Inferred alert types for causal reasoning
const (
	typeDatabaseConnection = "database_connection"
	typeDiskFull           = "disk_full"
	typeNetworkIssue       = "network_issue"
	typeMemoryPressure     = "memory_pressure"
	typeCPUSpike           = "cpu_spike"
	typeTimeoutError       = "timeout_error"
	typeApplicationError   = "application_error"
	typeUnknown            = "unknown"
)

// typeKeywords maps inferred types to the vocabulary matched against an
// alert's title and description. Order matters: the first matching entry
// wins.
var typeKeywords = []struct {
	alertType string
	keywords  []string
}{
	{typeDatabaseConnection, []string{"database", "db", "sql", "postgres", "mysql", "connection pool"}},
	{typeDiskFull, []string{"disk", "storage", "volume", "filesystem", "no space"}},
	{typeNetworkIssue, []string{"network", "dns", "unreachable", "packet loss", "connection refused"}},
	{typeMemoryPressure, []string{"memory", "oom", "out of memory", "heap"}},
	{typeCPUSpike, []string{"cpu", "load average", "throttl"}},
	{typeTimeoutError, []string{"timeout", "timed out", "deadline"}},
	{typeApplicationError, []string{"error", "exception", "crash", "panic", "5xx"}},
}

// DefaultCausalPatterns maps a cause type to the effect types it is known to
// produce. Hand-coded heuristics kept as configurable defaults.
func DefaultCausalPatterns() map[string][]string {
	return map[string][]string{
		typeDatabaseConnection: {typeApplicationError, typeTimeoutError},
		typeDiskFull:           {typeDatabaseConnection, typeApplicationError},
		typeNetworkIssue:       {typeDatabaseConnection, typeTimeoutError, typeApplicationError},
		typeMemoryPressure:     {typeApplicationError, typeCPUSpike},
		typeCPUSpike:           {typeTimeoutError},
	}
}

// DefaultServiceDependencies maps a service to the services it depends on.
// A causal match between alerts of dependent services earns a score bonus.
func DefaultServiceDependencies() map[string][]string {
	return map[string][]string{
		"api":      {"database", "cache", "auth"},
		"frontend": {"api"},
		"worker":   {"database", "queue"},
		"auth":     {"database"},
	}
}

// InferAlertType classifies an alert by keyword matching its title and
// description against the causal vocabulary.
func InferAlertType(a *alert.Alert) string {
	text := strings.ToLower(a.Title + " " + a.Description)
	for _, entry := range typeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.alertType
			}
		}
	}
	return typeUnknown
}

// causalMatches keeps candidates whose inferred type is a known cause of the
// alert's inferred type. The candidate must precede the alert strictly and
// within the causal window; the score decays linearly over that window.
func (e *Engine) causalMatches(a *alert.Alert, candidates []*alert.Alert) []match {
	window := e.cfg.CausalWindow.Seconds()
	alertType := InferAlertType(a)

	var out []match
	for _, c := range candidates {
		if !c.StartsAt.Before(a.StartsAt) {
			continue
		}
		timeDiff := timeBetween(a.StartsAt, c.StartsAt)
		if timeDiff > window {
			continue
		}

		effects, ok := e.causalPatterns[InferAlertType(c)]
		if !ok {
			continue
		}
		patternMatch := false
		for _, effect := range effects {
			if effect == alertType {
				patternMatch = true
				break
			}
		}
		if !patternMatch {
			continue
		}

		patternScore := 0.7
		dependencyScore := 0.0
		if e.servicesRelated(a.Service(), c.Service()) {
			dependencyScore = 0.3
		}

		timeFactor := 1.0 - timeDiff/window
		if timeFactor < 0 {
			timeFactor = 0
		}

		score := (patternScore + dependencyScore) * timeFactor
		if score > e.cfg.CausalThreshold {
			out = append(out, match{
				alertID:    c.ID,
				corrType:   correlation.TypeCausal,
				confidence: score,
			})
		}
	}
	return out
}

// servicesRelated reports whether two services are in a known dependency
// relationship, in either direction.
func (e *Engine) servicesRelated(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	for _, dep := range e.serviceDeps[a] {
		if dep == b {
			return true
		}
	}
	for _, dep := range e.serviceDeps[b] {
		if dep == a {
			return true
		}
	}
	return false
}
