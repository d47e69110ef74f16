package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/imrishuroy/dispatch-board/internal/config"
	"github.com/imrishuroy/dispatch-board/internal/logger"
	"github.com/imrishuroy/dispatch-board/internal/metrics"
)

// newPollMetrics returns the recorder handed to the reconciler and, when
// prometheus is enabled, the handler exposing it.
func newPollMetrics(cfg *config.Config) (metrics.PollRecorder, http.Handler, error) {
	if !cfg.Metrics.PrometheusEnabled {
		return metrics.NopSink{}, nil, nil
	}
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		return nil, nil, err
	}
	return sink, metrics.Handler(reg), nil
}

// serveMetrics runs h on addr until ctx ends.
func serveMetrics(ctx context.Context, addr string, h http.Handler, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("serving poll metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("metrics server: %v", err)
	}
}
