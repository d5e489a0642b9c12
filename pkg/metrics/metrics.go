// Package metrics provides the centralized Prometheus registry for the Gamma client.
// All metrics are defined in their respective packages (client, pagination,
// models, dump) to maintain modularity and avoid circular dependencies.
//
// This package provides the exposition endpoint and a reference for all
// available metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Registry is the default Prometheus registry used by the Gamma client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer backing Handler.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Handler returns the HTTP handler exposing all registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Serve exposes Handler on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("Metrics server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - gamma_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//     (status is "network_error" when no response was received)
//   - gamma_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - gamma_errors_total{class} (Counter): Errors by class (client, server, unexpected, network, decode)
//
// Pagination Metrics (pkg/pagination):
//   - gamma_pages_total{outcome} (Counter): Pages by outcome (ok, failed, discarded)
//   - gamma_paginated_fetch_duration_seconds (Histogram): Duration of a whole paginated fetch
//   - gamma_paginated_records (Histogram): Records returned by a paginated fetch
//
// Parse Metrics (pkg/models):
//   - gamma_parse_failures_total{kind} (Counter): Records skipped by the typed parser
//
// Dump Metrics (pkg/dump):
//   - gamma_dump_writes_total{sink, result} (Counter): Raw response dumps by sink and result
//
// Example Prometheus Queries:
//
//   # Failed page ratio
//   sum(rate(gamma_pages_total{outcome="failed"}[5m])) / sum(rate(gamma_pages_total[5m]))
//
//   # Request Error Rate
//   rate(gamma_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(gamma_request_duration_seconds_bucket[5m]))
