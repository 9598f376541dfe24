package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sentinelops/sentinel/internal/cache"
	"github.com/sentinelops/sentinel/internal/channels"
	"github.com/sentinelops/sentinel/internal/config"
	"github.com/sentinelops/sentinel/internal/correlation"
	"github.com/sentinelops/sentinel/internal/dispatch"
	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/filter"
	"github.com/sentinelops/sentinel/internal/ingest"
	"github.com/sentinelops/sentinel/internal/pipeline"
	"github.com/sentinelops/sentinel/internal/strategy"
	"github.com/sentinelops/sentinel/internal/testutil"
)

type handlerFixture struct {
	pipeline *pipeline.Service
	alerts   *testutil.MockAlertRepository
	corrs    *testutil.MockCorrelationRepository
	history  *testutil.MockNotificationRepository
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	log := testutil.NewLogger()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	alerts := testutil.NewMockAlertRepository()
	rules := testutil.NewMockRuleRepository()
	corrs := testutil.NewMockCorrelationRepository()
	history := testutil.NewMockNotificationRepository()
	windowCache := cache.NewMemory()

	ing := ingest.NewService(alerts, rules, log)
	ing.SetClock(clock)

	flt := filter.New(alerts, windowCache, config.FilterConfig{
		BurstThreshold:  100,
		DuplicateWindow: 5 * time.Minute,
		NoiseWindow:     24 * time.Hour,
		NoiseThreshold:  0.7,
	}, log)
	flt.SetClock(clock)

	accuracy := correlation.NewAccuracyTracker(windowCache, 0.7, log)
	engine := correlation.NewEngine(alerts, corrs, accuracy, config.CorrelatorConfig{
		TemporalWindow:    5 * time.Minute,
		CausalWindow:      10 * time.Minute,
		MaxCandidates:     50,
		ClusterEps:        0.5,
		ClusterMinPoints:  2,
		AccuracyCutoff:    0.7,
		TemporalThreshold: 0.5,
		SpatialThreshold:  0.8,
		SemanticThreshold: 0.7,
		CausalThreshold:   0.6,
	}, log)
	engine.SetClock(clock)

	sender := testutil.NewMockSender(notification.ChannelEmail)
	registry := channels.NewRegistry()
	if err := registry.Register(sender); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	provider := testutil.NewMockChannelProvider(&notification.Channel{
		ID:        "ch-email",
		Type:      notification.ChannelEmail,
		Name:      "ops email",
		Recipient: "ops@example.com",
		Enabled:   true,
	})
	limiter := dispatch.NewRateLimiter(windowCache, true, log)
	dispatcher := dispatch.New(history, provider, registry, limiter, config.DispatchConfig{
		WorkersPerLane:    1,
		QueueSize:         16,
		MaxAttempts:       3,
		SendTimeout:       time.Second,
		ReconcileAfter:    time.Minute,
		RetentionWindow:   24 * time.Hour,
		RateLimitFailOpen: true,
	}, log)

	service := pipeline.New(ing, flt, engine, strategy.NewPlanner(), dispatcher,
		testutil.NewMockEscalationHook(), alerts, corrs, accuracy, log)
	service.SetClock(clock)

	return &handlerFixture{
		pipeline: service,
		alerts:   alerts,
		corrs:    corrs,
		history:  history,
	}
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
