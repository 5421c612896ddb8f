package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/portara/walletcore/internal/wallet/errclass"
	"github.com/portara/walletcore/internal/wallet/events"
)

// Metrics holds the wallet core's Prometheus collectors. An instance is
// wired as an events.Bus subscriber and as the retrier's retry hook, so the
// domain packages stay free of metrics concerns.
type Metrics struct {
	registry *prometheus.Registry

	connectionTransitions  *prometheus.CounterVec
	transactionTransitions *prometheus.CounterVec
	multisigSignatures     prometheus.Counter
	classifiedErrors       *prometheus.CounterVec
	retries                *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		connectionTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "walletcore",
				Subsystem: "connection",
				Name:      "transitions_total",
				Help:      "Total number of connection state transitions.",
			},
			[]string{"state"},
		),

		transactionTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "walletcore",
				Subsystem: "transaction",
				Name:      "transitions_total",
				Help:      "Total number of transaction state transitions.",
			},
			[]string{"status"},
		),

		multisigSignatures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "walletcore",
				Subsystem: "multisig",
				Name:      "signatures_total",
				Help:      "Total number of collected multi-signature contributions.",
			},
		),

		classifiedErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "walletcore",
				Subsystem: "errors",
				Name:      "classified_total",
				Help:      "Total number of classified errors by kind and provider.",
			},
			[]string{"kind", "provider"},
		),

		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "walletcore",
				Subsystem: "errors",
				Name:      "retries_total",
				Help:      "Total number of retry attempts by error kind.",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(
		m.connectionTransitions,
		m.transactionTransitions,
		m.multisigSignatures,
		m.classifiedErrors,
		m.retries,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)

	return m
}

// Registry exposes the underlying registry for the HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEvent counts one lifecycle event. Satisfies events.Callback.
func (m *Metrics) ObserveEvent(e events.Event) {
	switch e.Type {
	case events.TypeConnectionStateChanged:
		m.connectionTransitions.WithLabelValues(e.ConnectionState).Inc()
	case events.TypeTransactionStateChanged:
		m.transactionTransitions.WithLabelValues(e.TransactionStatus).Inc()
	case events.TypeMultiSigProgress:
		m.multisigSignatures.Inc()
	}
}

// RecordError counts one classified error.
func (m *Metrics) RecordError(kind errclass.Kind, providerID string) {
	if providerID == "" {
		providerID = "unknown"
	}
	m.classifiedErrors.WithLabelValues(string(kind), providerID).Inc()
}

// RecordRetry counts one retry attempt. Satisfies errclass.RetryFunc.
func (m *Metrics) RecordRetry(kind errclass.Kind, _ int, _ time.Duration) {
	m.retries.WithLabelValues(string(kind)).Inc()
}
