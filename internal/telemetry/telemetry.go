// Package telemetry exposes run metrics on a Prometheus endpoint while
// a run is in progress.
package telemetry

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/volleyfire/volleyfire/internal/metrics"
)

// Metrics holds the Prometheus instruments for a run.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	runActive       prometheus.Gauge
}

// NewMetrics creates the instruments on a private registry so repeated
// runs in one process never collide on registration.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volleyfire_requests_total",
				Help: "Total completed request attempts by outcome class",
			},
			[]string{"class"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "volleyfire_request_duration_seconds",
				Help:    "Request duration in seconds by outcome class",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"class"},
		),
		runActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "volleyfire_run_active",
				Help: "Whether a run is in progress (1) or not (0)",
			},
		),
	}
}

// Observer returns an aggregator observer that records every outcome.
func (m *Metrics) Observer() func(metrics.Outcome) {
	return func(out metrics.Outcome) {
		class := out.Class.String()
		m.requestsTotal.WithLabelValues(class).Inc()
		m.requestDuration.WithLabelValues(class).Observe(out.Latency.Seconds())
	}
}

// RunStarted marks the run gauge active.
func (m *Metrics) RunStarted() { m.runActive.Set(1) }

// RunEnded marks the run gauge idle.
func (m *Metrics) RunEnded() { m.runActive.Set(0) }

// Server serves the metrics endpoint for the duration of a run.
type Server struct {
	server   *http.Server
	listener net.Listener
}

// NewServer builds a metrics server for addr. Nothing listens until
// Start is called.
func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Start binds the listen address and begins serving in the background.
// Bind errors are returned synchronously.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		_ = s.server.Serve(listener)
	}()
	return nil
}

// Addr returns the bound listen address, useful when Start resolved
// port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
