package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds the bot's Prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	CommandsTotal         *prometheus.CounterVec   // labels: verb, outcome
	ProviderAttemptsTotal *prometheus.CounterVec   // labels: provider, outcome
	GenerationSeconds     *prometheus.HistogramVec // labels: provider
	FetchSeconds          *prometheus.HistogramVec // labels: source, outcome
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockbot_commands_total",
			Help: "Commands handled, by verb and outcome category",
		}, []string{"verb", "outcome"}),
		ProviderAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockbot_provider_attempts_total",
			Help: "LLM provider attempts, by provider and outcome",
		}, []string{"provider", "outcome"}),
		GenerationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockbot_generation_seconds",
			Help:    "Latency of successful LLM generations",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"provider"}),
		FetchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockbot_fetch_seconds",
			Help:    "Market data fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"source", "outcome"}),
	}

	m.registry.MustRegister(
		m.CommandsTotal,
		m.ProviderAttemptsTotal,
		m.GenerationSeconds,
		m.FetchSeconds,
	)
	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveCommand counts one handled command.
func (m *Metrics) ObserveCommand(verb, outcome string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(verb, outcome).Inc()
}

// ObserveAttempt records one provider attempt.
func (m *Metrics) ObserveAttempt(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ProviderAttemptsTotal.WithLabelValues(provider, outcome).Inc()
	if outcome == "success" {
		m.GenerationSeconds.WithLabelValues(provider).Observe(elapsed.Seconds())
	}
}

// ObserveFetch records one market data fetch.
func (m *Metrics) ObserveFetch(source, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.FetchSeconds.WithLabelValues(source, outcome).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics server.
func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("component", "metrics").Str("addr", s.addr).Msg("Metrics server listening")
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
