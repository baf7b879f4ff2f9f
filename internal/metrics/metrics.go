// Package metrics exposes the service's Prometheus collectors. A nil
// *Metrics is valid and records nothing, which keeps tests free of wiring.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry      *prometheus.Registry
	rpcs          *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	messages      *prometheus.CounterVec
	uploads       *prometheus.CounterVec
	subscriptions prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "surepay_rpc_requests_total",
			Help: "RPCs handled, by method and status code.",
		}, []string{"method", "code"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "surepay_record_transitions_total",
			Help: "Successful booking/request status transitions.",
		}, []string{"kind", "status"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "surepay_chat_messages_total",
			Help: "Chat messages stored, by sender role.",
		}, []string{"role"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "surepay_image_uploads_total",
			Help: "Image uploads, by outcome.",
		}, []string{"outcome"}),
		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "surepay_thread_subscriptions",
			Help: "Open live thread subscriptions.",
		}),
	}
	m.registry.MustRegister(
		m.rpcs, m.transitions, m.messages, m.uploads, m.subscriptions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRPC(method, code string) {
	if m == nil {
		return
	}
	m.rpcs.WithLabelValues(method, code).Inc()
}

func (m *Metrics) ObserveTransition(kind, status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) ObserveMessage(role string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(role).Inc()
}

func (m *Metrics) ObserveUpload(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SubscriptionOpened() {
	if m == nil {
		return
	}
	m.subscriptions.Inc()
}

func (m *Metrics) SubscriptionClosed() {
	if m == nil {
		return
	}
	m.subscriptions.Dec()
}
