package telegram

import (
	"testing"

	coreconfig "github.com/m3rciful/adventbot/core/config"
	"github.com/m3rciful/adventbot/core/telegram/state"
)

func middlewareNames(mws []Middleware) []string {
	names := make([]string, 0, len(mws))
	for _, mw := range mws {
		names = append(names, mw.Name)
	}
	return names
}

func TestDefaultMiddlewaresOrder(t *testing.T) {
	cfg := &coreconfig.Config{RateLimit: coreconfig.RateLimitConfig{IntervalMS: 500}}
	got := middlewareNames(DefaultMiddlewares(cfg, MiddlewareOptions{Locker: state.NewLocker()}))
	want := []string{"logger", "error_boundary", "rate_limit", "metrics", "serialize"}
	if len(got) != len(want) {
		t.Fatalf("middlewares = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("middlewares = %v, want %v", got, want)
		}
	}
}

func TestDefaultMiddlewaresOptionalParts(t *testing.T) {
	got := middlewareNames(DefaultMiddlewares(&coreconfig.Config{}, MiddlewareOptions{}))
	if len(got) != 3 || got[2] != "metrics" {
		t.Fatalf("middlewares = %v", got)
	}
}
