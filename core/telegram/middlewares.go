package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/adventbot/core/config"
	"github.com/m3rciful/adventbot/core/telegram/middleware"
	"github.com/m3rciful/adventbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// MiddlewareOptions carries the application hooks of the default chain.
type MiddlewareOptions struct {
	Boundary  middleware.BoundaryOptions
	OnLimited tele.HandlerFunc
	// Locker serializes updates per sender; nil disables serialization.
	Locker *state.Locker
}

// DefaultMiddlewares builds the global chain, outermost first:
// logger, error boundary, rate limit, message counters, per-sender lock.
func DefaultMiddlewares(cfg *coreconfig.Config, opts MiddlewareOptions) []Middleware {
	mws := []Middleware{
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "error_boundary", Use: middleware.ErrorBoundary(opts.Boundary)},
	}

	if cfg != nil && cfg.RateLimit.IntervalMS > 0 {
		ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, t := range cfg.RateLimit.ExcludeUpdates {
			ex[strings.ToLower(t)] = struct{}{}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:   ex,
				OnLimited: opts.OnLimited,
			}),
		})
	}

	mws = append(mws, Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware})
	if opts.Locker != nil {
		mws = append(mws, Middleware{Name: "serialize", Use: middleware.Serialize(opts.Locker)})
	}
	return mws
}
