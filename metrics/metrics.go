// Package metrics exposes Prometheus counters for the authentication and
// file flows, and a small server publishing them on a separate listener.
package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultDenied  = "denied"
)

// Metrics holds the counters updated by request handlers. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	NonceIssued   prometheus.Counter
	LoginAttempts *prometheus.CounterVec
	Uploads       *prometheus.CounterVec
	Deletes       *prometheus.CounterVec
}

// NewMetrics registers all counters under a namespace derived from the package name.
func NewMetrics(packageName string) *Metrics {
	namespace := namespaceFor(packageName)
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		NonceIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nonce_issued_total",
			Help:      "Number of login nonces issued.",
		}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Wallet signature verification attempts by result and reason.",
		}, []string{"result", "reason"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "File uploads by result.",
		}, []string{"result"}),
		Deletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletes_total",
			Help:      "File deletions by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.NonceIssued,
		m.LoginAttempts,
		m.Uploads,
		m.Deletes,
	)
	return m
}

func (m *Metrics) IncNonceIssued() {
	if m == nil {
		return
	}
	m.NonceIssued.Inc()
}

func (m *Metrics) IncLogin(result, reason string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result, reason).Inc()
}

func (m *Metrics) IncUpload(result string) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(result).Inc()
}

func (m *Metrics) IncDelete(result string) {
	if m == nil {
		return
	}
	m.Deletes.WithLabelValues(result).Inc()
}

// Handler returns the /metrics handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server publishing m on addr.
func New(m *Metrics, addr string) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	return &MetricsServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func namespaceFor(packageName string) string {
	name := packageName[strings.LastIndex(packageName, "/")+1:]
	return strings.NewReplacer("-", "_", ".", "_").Replace(name)
}
