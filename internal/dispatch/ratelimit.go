package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/sentinelops/sentinel/internal/cache"
	"github.com/sentinelops/sentinel/internal/domain/notification"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
)

// ChannelLimit caps sends per channel type over a minute and an hour
type ChannelLimit struct {
	PerMinute int
	PerHour   int
}

// DefaultChannelLimits returns the per-channel send budgets
func DefaultChannelLimits() map[notification.ChannelType]ChannelLimit {
	return map[notification.ChannelType]ChannelLimit{
		notification.ChannelEmail:   {PerMinute: 100, PerHour: 1000},
		notification.ChannelSMS:     {PerMinute: 10, PerHour: 100},
		notification.ChannelPush:    {PerMinute: 200, PerHour: 2000},
		notification.ChannelWebhook: {PerMinute: 60, PerHour: 600},
		notification.ChannelSlack:   {PerMinute: 60, PerHour: 600},
		notification.ChannelDiscord: {PerMinute: 60, PerHour: 600},
		notification.ChannelPhone:   {PerMinute: 5, PerHour: 20},
	}
}

// RateLimiter enforces per-channel-type send budgets with counters in the
// shared cache; increment and expiry are one atomic operation so concurrent
// dispatcher workers cannot race past the limit.
type RateLimiter struct {
	cache    cache.Cache
	limits   map[notification.ChannelType]ChannelLimit
	failOpen bool
	logger   *logger.Logger
	now      func() time.Time
}

// NewRateLimiter creates a rate limiter with the default channel budgets
func NewRateLimiter(c cache.Cache, failOpen bool, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		cache:    c,
		limits:   DefaultChannelLimits(),
		failOpen: failOpen,
		logger:   log,
		now:      time.Now,
	}
}

// SetLimits overrides the channel budgets
func (r *RateLimiter) SetLimits(limits map[notification.ChannelType]ChannelLimit) {
	r.limits = limits
}

// SetClock overrides the clock, for tests
func (r *RateLimiter) SetClock(now func() time.Time) {
	r.now = now
}

// Allow reports whether a send on the channel type is inside both the
// per-minute and per-hour budgets. Cache unavailability fails open when
// configured so alert delivery is never blocked by a degraded cache.
func (r *RateLimiter) Allow(ctx context.Context, t notification.ChannelType) bool {
	limit, ok := r.limits[t]
	if !ok {
		return true
	}

	now := r.now().UTC()
	minuteKey := fmt.Sprintf("ratelimit:%s:minute:%s", t, now.Format("200601021504"))
	hourKey := fmt.Sprintf("ratelimit:%s:hour:%s", t, now.Format("2006010215"))

	minuteCount, err := r.cache.IncrWithExpire(ctx, minuteKey, 2*time.Minute)
	if err != nil {
		r.logger.WithError(err).Warn("Rate limit counter unavailable")
		return r.failOpen
	}
	hourCount, err := r.cache.IncrWithExpire(ctx, hourKey, 2*time.Hour)
	if err != nil {
		r.logger.WithError(err).Warn("Rate limit counter unavailable")
		return r.failOpen
	}

	return minuteCount <= int64(limit.PerMinute) && hourCount <= int64(limit.PerHour)
}
