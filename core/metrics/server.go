package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/adventbot/core/logger"
)

// Handler serves the metrics registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Server exposes the metrics endpoint on its own listener.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// Start listens on addr and serves metrics at path in the background.
func Start(addr, path string) (*Server, error) {
	if path == "" {
		path = "/metrics"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics: listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	s := &Server{
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("metrics server stopped",
				slog.String("component", "metrics"),
				slog.String("event", "serve"),
				slog.String("err", err.Error()),
			)
		}
	}()
	logger.L.Info("metrics server started",
		slog.String("component", "metrics"),
		slog.String("event", "serve"),
		slog.String("listen", ln.Addr().String()),
		slog.String("path", path),
	)
	return s, nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server, waiting for in-flight scrapes until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
