package correlation

import (
	"testing"
	"time"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/testutil"
)

func TestInferAlertType(t *testing.T) {
	tests := []struct {
		name  string
		title string
		desc  string
		want  string
	}{
		{name: "database", title: "Postgres connection pool exhausted", want: "database_connection"},
		{name: "disk", title: "No space left on device", want: "disk_full"},
		{name: "network", title: "DNS resolution failing", want: "network_issue"},
		{name: "memory", title: "OOM killer invoked", want: "memory_pressure"},
		{name: "cpu", title: "CPU throttling on node", want: "cpu_spike"},
		{name: "timeout", title: "Request deadline exceeded", want: "timeout_error"},
		{name: "application", title: "Unhandled exception in checkout", want: "application_error"},
		{name: "description match", title: "Service degraded", desc: "health probe timed out", want: "timeout_error"},
		{name: "first category wins", title: "Database timeout", want: "database_connection"},
		{name: "unknown", title: "Certificate rotation due", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testutil.NewAlert("a1", func(a *alert.Alert) {
				a.Title = tt.title
				a.Description = tt.desc
			})
			if got := InferAlertType(a); got != tt.want {
				t.Errorf("InferAlertType() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEngine_CausalMatches(t *testing.T) {
	e := newTestEngine(testutil.NewMockAlertRepository())

	// Effect: an application error on the api service.
	effect := testutil.NewAlert("a1", func(a *alert.Alert) {
		a.Title = "Unhandled exception rate spike"
		a.Description = "5xx responses climbing"
		a.Labels = map[string]string{"service": "api"}
	})

	cause := testutil.NewAlert("c1", func(a *alert.Alert) {
		a.Title = "Postgres connection pool exhausted"
		a.StartsAt = effect.StartsAt.Add(-time.Minute)
		a.Labels = map[string]string{"service": "database"}
	})

	matches := e.causalMatches(effect, []*alert.Alert{cause})
	if len(matches) != 1 {
		t.Fatalf("causalMatches() = %d matches, want 1", len(matches))
	}

	// Pattern 0.7 plus dependency 0.3, decayed by 60s of the 600s window.
	want := (0.7 + 0.3) * (1.0 - 60.0/600.0)
	if diff := matches[0].confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("causalMatches() confidence = %v, want %v", matches[0].confidence, want)
	}
}

func TestEngine_CausalMatches_Skips(t *testing.T) {
	e := newTestEngine(testutil.NewMockAlertRepository())

	effect := testutil.NewAlert("a1", func(a *alert.Alert) {
		a.Title = "Unhandled exception rate spike"
		a.Labels = map[string]string{"service": "api"}
	})

	tests := []struct {
		name      string
		candidate func() *alert.Alert
	}{
		{
			name: "candidate after the alert",
			candidate: func() *alert.Alert {
				c := testutil.NewAlert("c1", func(a *alert.Alert) {
					a.Title = "Postgres connection pool exhausted"
				})
				c.StartsAt = effect.StartsAt.Add(time.Minute)
				return c
			},
		},
		{
			name: "candidate outside causal window",
			candidate: func() *alert.Alert {
				c := testutil.NewAlert("c2", func(a *alert.Alert) {
					a.Title = "Postgres connection pool exhausted"
				})
				c.StartsAt = effect.StartsAt.Add(-time.Hour)
				return c
			},
		},
		{
			name: "no causal pattern",
			candidate: func() *alert.Alert {
				c := testutil.NewAlert("c3", func(a *alert.Alert) {
					a.Title = "Request deadline exceeded"
				})
				c.StartsAt = effect.StartsAt.Add(-time.Minute)
				return c
			},
		},
		{
			name: "cause type unknown",
			candidate: func() *alert.Alert {
				c := testutil.NewAlert("c4", func(a *alert.Alert) {
					a.Title = "Certificate rotation due"
				})
				c.StartsAt = effect.StartsAt.Add(-time.Minute)
				return c
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if matches := e.causalMatches(effect, []*alert.Alert{tt.candidate()}); len(matches) != 0 {
				t.Errorf("causalMatches() = %d matches, want 0", len(matches))
			}
		})
	}
}

func TestEngine_ServicesRelated(t *testing.T) {
	e := newTestEngine(testutil.NewMockAlertRepository())

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "direct dependency", a: "api", b: "database", want: true},
		{name: "reverse direction", a: "database", b: "api", want: true},
		{name: "unrelated", a: "api", b: "billing", want: false},
		{name: "empty service", a: "", b: "database", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.servicesRelated(tt.a, tt.b); got != tt.want {
				t.Errorf("servicesRelated(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEngine_SetCausalTables(t *testing.T) {
	e := newTestEngine(testutil.NewMockAlertRepository())
	e.SetCausalTables(map[string][]string{"cpu_spike": {"application_error"}}, nil)

	effect := testutil.NewAlert("a1", func(a *alert.Alert) {
		a.Title = "Unhandled exception rate spike"
	})
	cause := testutil.NewAlert("c1", func(a *alert.Alert) {
		a.Title = "CPU throttling on node"
	})
	cause.StartsAt = effect.StartsAt.Add(-time.Minute)

	if matches := e.causalMatches(effect, []*alert.Alert{cause}); len(matches) != 1 {
		t.Errorf("causalMatches() = %d matches after table override, want 1", len(matches))
	}
}
