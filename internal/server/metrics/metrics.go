// Package metrics exposes Prometheus instruments for the authentication
// flows. A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gophauth"

// Operation labels.
const (
	OpRegister       = "register"
	OpLogin          = "login"
	OpAuthenticate   = "authenticate"
	OpChangePassword = "change_password"
)

type Metrics struct {
	registry     *prometheus.Registry
	operations   *prometheus.CounterVec
	hashDuration prometheus.Histogram
	hashInFlight prometheus.Gauge
}

// New creates the instruments on a private registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Authentication operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		hashDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "password_hash_seconds",
			Help:      "Time spent in password hashing and verification once a hashing slot is held.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		hashInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "password_hash_in_flight",
			Help:      "Password hash computations currently running.",
		}),
	}

	reg.MustRegister(
		m.operations,
		m.hashDuration,
		m.hashInFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry the instruments live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Observe counts one operation with the outcome derived from err.
func (m *Metrics) Observe(op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, Outcome(err)).Inc()
}

// HashStarted marks a hash computation as running and returns a func that
// records its duration when called.
func (m *Metrics) HashStarted() func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	m.hashInFlight.Inc()
	return func() {
		m.hashInFlight.Dec()
		m.hashDuration.Observe(time.Since(start).Seconds())
	}
}

// Outcome maps an error to a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, common.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, common.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, common.ErrPolicyRejected):
		return "policy_rejected"
	case errors.Is(err, common.ErrPasswordMismatch):
		return "password_mismatch"
	case errors.Is(err, common.ErrorAlreadyExists):
		return "conflict"
	case errors.Is(err, common.ErrorNotFound):
		return "not_found"
	default:
		return "error"
	}
}
