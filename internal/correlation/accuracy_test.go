package correlation

import (
	"context"
	"testing"

	"github.com/sentinelops/sentinel/internal/cache"
	"github.com/sentinelops/sentinel/internal/domain/correlation"
	"github.com/sentinelops/sentinel/internal/testutil"
)

func TestAccuracyTracker_Defaults(t *testing.T) {
	tracker := NewAccuracyTracker(cache.NewMemory(), 0.7, testutil.NewLogger())

	tests := []struct {
		corrType correlation.Type
		want     float64
	}{
		{correlation.TypeTemporal, 0.8},
		{correlation.TypeSpatial, 0.7},
		{correlation.TypeSemantic, 0.6},
		{correlation.TypeCausal, 0.5},
	}

	for _, tt := range tests {
		if got := tracker.Get(tt.corrType); got != tt.want {
			t.Errorf("Get(%s) = %v, want %v", tt.corrType, got, tt.want)
		}
	}
}

func TestAccuracyTracker_FeedbackRefresh(t *testing.T) {
	tracker := NewAccuracyTracker(cache.NewMemory(), 0.7, testutil.NewLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := tracker.Feedback(ctx, correlation.TypeTemporal, true); err != nil {
			t.Fatalf("Feedback() error = %v", err)
		}
	}
	if err := tracker.Feedback(ctx, correlation.TypeTemporal, false); err != nil {
		t.Fatalf("Feedback() error = %v", err)
	}

	// Feedback lands in the counters; the in-memory view updates on refresh.
	if got := tracker.Get(correlation.TypeTemporal); got != 0.8 {
		t.Errorf("Get() = %v before refresh, want default 0.8", got)
	}

	if err := tracker.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := tracker.Get(correlation.TypeTemporal); got != 0.75 {
		t.Errorf("Get() = %v after refresh, want 0.75", got)
	}

	// Types without feedback keep their defaults.
	if got := tracker.Get(correlation.TypeCausal); got != 0.5 {
		t.Errorf("Get(causal) = %v, want default 0.5", got)
	}
}

func TestAccuracyTracker_RecordResult(t *testing.T) {
	tracker := NewAccuracyTracker(cache.NewMemory(), 0.7, testutil.NewLogger())
	ctx := context.Background()

	// Above the cutoff counts as accurate until reviewed, below only as total.
	tracker.RecordResult(ctx, correlation.TypeSpatial, 0.9)
	tracker.RecordResult(ctx, correlation.TypeSpatial, 0.4)

	if err := tracker.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := tracker.Get(correlation.TypeSpatial); got != 0.5 {
		t.Errorf("Get() = %v, want 0.5", got)
	}
}
