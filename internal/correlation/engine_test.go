package correlation

import (
	"context"
	"testing"
	"time"

	"github.com/sentinelops/sentinel/internal/cache"
	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/domain/correlation"
	"github.com/sentinelops/sentinel/internal/testutil"
)

func TestEngine_Correlate(t *testing.T) {
	alerts := testutil.NewMockAlertRepository()
	corrs := testutil.NewMockCorrelationRepository()
	accuracy := NewAccuracyTracker(cache.NewMemory(), 0.7, testutil.NewLogger())
	e := NewEngine(alerts, corrs, accuracy, testCorrelatorConfig(), testutil.NewLogger())
	ctx := context.Background()

	a := testutil.NewAlert("a1")
	alerts.Create(ctx, a)

	// An open twin that every detector should relate to the alert.
	twin := testutil.NewAlert("c1")
	twin.Fingerprint = "fp-c1"
	twin.StartsAt = a.StartsAt.Add(-30 * time.Second)
	alerts.Create(ctx, twin)

	results, err := e.Correlate(ctx, a)
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Correlate() = no correlations, want at least one")
	}

	for _, r := range results {
		if r.AlertID != "a1" {
			t.Errorf("Correlate() alert_id = %s, want a1", r.AlertID)
		}
		if r.CorrelationID != "c1" {
			t.Errorf("Correlate() correlation_id = %s, want c1", r.CorrelationID)
		}
		if r.ID == "" {
			t.Error("Correlate() produced correlation without id")
		}
		if r.Confidence <= 0 || r.Confidence > 1.0 {
			t.Errorf("Correlate() confidence = %v, want in (0, 1]", r.Confidence)
		}
	}

	// Results are persisted.
	stored, err := corrs.ListByAlert(ctx, "a1")
	if err != nil {
		t.Fatalf("ListByAlert() error = %v", err)
	}
	if len(stored) != len(results) {
		t.Errorf("Correlate() persisted %d correlations, want %d", len(stored), len(results))
	}
}

func TestEngine_Correlate_ExcludesSelf(t *testing.T) {
	alerts := testutil.NewMockAlertRepository()
	corrs := testutil.NewMockCorrelationRepository()
	accuracy := NewAccuracyTracker(cache.NewMemory(), 0.7, testutil.NewLogger())
	e := NewEngine(alerts, corrs, accuracy, testCorrelatorConfig(), testutil.NewLogger())
	ctx := context.Background()

	a := testutil.NewAlert("a1")
	alerts.Create(ctx, a)

	results, err := e.Correlate(ctx, a)
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	if results != nil {
		t.Errorf("Correlate() = %d correlations with no candidates, want none", len(results))
	}
}

func TestEngine_Correlate_IgnoresClosedCandidates(t *testing.T) {
	alerts := testutil.NewMockAlertRepository()
	corrs := testutil.NewMockCorrelationRepository()
	accuracy := NewAccuracyTracker(cache.NewMemory(), 0.7, testutil.NewLogger())
	e := NewEngine(alerts, corrs, accuracy, testCorrelatorConfig(), testutil.NewLogger())
	ctx := context.Background()

	a := testutil.NewAlert("a1")
	alerts.Create(ctx, a)

	resolved := testutil.NewAlert("c1")
	resolved.Fingerprint = "fp-c1"
	resolved.Status = alert.StatusResolved
	alerts.Create(ctx, resolved)

	results, err := e.Correlate(ctx, a)
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	if results != nil {
		t.Errorf("Correlate() = %d correlations from resolved candidate, want none", len(results))
	}
}

func TestEngine_Correlate_AccuracyBoost(t *testing.T) {
	alerts := testutil.NewMockAlertRepository()
	corrs := testutil.NewMockCorrelationRepository()
	accuracy := NewAccuracyTracker(cache.NewMemory(), 0.7, testutil.NewLogger())
	e := NewEngine(alerts, corrs, accuracy, testCorrelatorConfig(), testutil.NewLogger())
	ctx := context.Background()

	// Distant twin: only the temporal detector fires, without severity or
	// source agreement, so the raw confidence stays below 1.0.
	a := testutil.NewAlert("a1")
	alerts.Create(ctx, a)

	c := testutil.NewAlert("c1")
	c.Fingerprint = "fp-c1"
	c.StartsAt = a.StartsAt.Add(-90 * time.Second)
	c.Severity = alert.SeverityCritical
	c.Source = "datadog"
	c.Title = "Payment queue backlog growing"
	c.Description = "Queue depth exceeds baseline"
	c.Labels = map[string]string{"service": "queue"}
	alerts.Create(ctx, c)

	results, err := e.Correlate(ctx, a)
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Correlate() = %d correlations, want 1", len(results))
	}

	r := results[0]
	if r.Type != correlation.TypeTemporal {
		t.Fatalf("Correlate() type = %s, want temporal", r.Type)
	}

	// Raw 0.7 boosted by the default temporal accuracy: 0.7 * 1.16.
	want := 0.7 * (1.0 + 0.8*0.2)
	if diff := r.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Correlate() confidence = %v, want %v", r.Confidence, want)
	}
}

func TestDedupe(t *testing.T) {
	matches := []match{
		{alertID: "a", corrType: correlation.TypeTemporal, confidence: 0.6},
		{alertID: "a", corrType: correlation.TypeTemporal, confidence: 0.9},
		{alertID: "a", corrType: correlation.TypeSpatial, confidence: 0.85},
		{alertID: "b", corrType: correlation.TypeTemporal, confidence: 0.7},
	}

	out := dedupe(matches)
	if len(out) != 3 {
		t.Fatalf("dedupe() = %d matches, want 3", len(out))
	}
	for _, m := range out {
		if m.alertID == "a" && m.corrType == correlation.TypeTemporal && m.confidence != 0.9 {
			t.Errorf("dedupe() kept confidence %v for duplicate pair, want max 0.9", m.confidence)
		}
	}
}
