package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/amp-labs/amp-fsm/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsReadHeaderTimeout = 5 * time.Second

// metricsServer exposes the default Prometheus registry on /metrics.
type metricsServer struct {
	server *http.Server
	addr   net.Addr
}

// startMetricsServer binds addr immediately, so a bad address fails the
// command, and serves in the background.
func startMetricsServer(ctx context.Context, addr string) (*metricsServer, error) {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get(ctx).Error("Metrics server failed", "error", err)
		}
	}()

	logger.Get(ctx).Debug("Serving metrics", "addr", listener.Addr().String())

	return &metricsServer{server: server, addr: listener.Addr()}, nil
}

func (m *metricsServer) shutdown(ctx context.Context) error {
	if err := m.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop metrics server: %w", err)
	}

	return nil
}
