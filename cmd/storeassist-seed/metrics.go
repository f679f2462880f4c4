package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// metricsServer exposes the loader's registry while a seed run is in progress.
type metricsServer struct {
	srv *http.Server
	ln  net.Listener
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return r
}

// startMetricsServer listens on addr and serves /metrics in the background.
func startMetricsServer(addr string, reg *prometheus.Registry, logger *zap.Logger) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	ms := &metricsServer{
		srv: &http.Server{Handler: metricsHandler(reg), ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}
	go func() {
		if err := ms.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("Serving seed metrics", zap.String("addr", ln.Addr().String()))
	return ms, nil
}

func (ms *metricsServer) Addr() string { return ms.ln.Addr().String() }

// Stop keeps serving for linger so a final scrape can land, then shuts down.
// A canceled ctx cuts the linger short.
func (ms *metricsServer) Stop(ctx context.Context, linger time.Duration) error {
	if linger > 0 {
		t := time.NewTimer(linger)
		select {
		case <-ctx.Done():
		case <-t.C:
		}
		t.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := ms.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}
