package correlation

import (
	"testing"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/testutil"
)

func TestSpatialScore(t *testing.T) {
	tests := []struct {
		name string
		a, b *alert.Alert
		want float64
	}{
		{
			name: "identical origin",
			a:    testutil.NewAlert("a1"),
			b:    testutil.NewAlert("b1"),
			want: 1.0,
		},
		{
			name: "same source only",
			a: testutil.NewAlert("a1", func(a *alert.Alert) {
				a.Labels = map[string]string{"service": "api"}
			}),
			b: testutil.NewAlert("b1", func(a *alert.Alert) {
				a.Labels = map[string]string{"service": "worker"}
			}),
			want: 0.4,
		},
		{
			name: "no labels no service",
			a: testutil.NewAlert("a1", func(a *alert.Alert) {
				a.Labels = nil
			}),
			b: testutil.NewAlert("b1", func(a *alert.Alert) {
				a.Labels = nil
			}),
			want: 0.4,
		},
		{
			name: "partial label agreement",
			a: testutil.NewAlert("a1", func(a *alert.Alert) {
				a.Labels = map[string]string{"service": "api", "region": "us-east-1"}
			}),
			b: testutil.NewAlert("b1", func(a *alert.Alert) {
				a.Labels = map[string]string{"service": "api", "region": "eu-west-1"}
			}),
			want: 0.4 + 0.3*0.5 + 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := spatialScore(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("spatialScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLabelAgreement(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]string
		want float64
	}{
		{name: "both empty", a: nil, b: nil, want: 0},
		{name: "one empty", a: map[string]string{"k": "v"}, b: nil, want: 0},
		{
			name: "full agreement",
			a:    map[string]string{"service": "api", "env": "prod"},
			b:    map[string]string{"service": "api", "env": "prod"},
			want: 1.0,
		},
		{
			name: "same key different value",
			a:    map[string]string{"env": "prod"},
			b:    map[string]string{"env": "staging"},
			want: 0,
		},
		{
			name: "one of three",
			a:    map[string]string{"service": "api", "env": "prod"},
			b:    map[string]string{"service": "api", "region": "us-east-1"},
			want: 1.0 / 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labelAgreement(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("labelAgreement() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngine_SpatialMatches_Threshold(t *testing.T) {
	e := newTestEngine(testutil.NewMockAlertRepository())
	base := testutil.NewAlert("a1")

	twin := testutil.NewAlert("c1")
	unrelated := testutil.NewAlert("c2", func(a *alert.Alert) {
		a.Source = "pagerduty"
		a.Labels = map[string]string{"team": "payments"}
	})

	matches := e.spatialMatches(base, []*alert.Alert{twin, unrelated})
	if len(matches) != 1 {
		t.Fatalf("spatialMatches() = %d matches, want 1", len(matches))
	}
	if matches[0].alertID != "c1" {
		t.Errorf("spatialMatches() matched %s, want c1", matches[0].alertID)
	}
	if matches[0].confidence != 1.0 {
		t.Errorf("spatialMatches() confidence = %v, want 1.0", matches[0].confidence)
	}
}
