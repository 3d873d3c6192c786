package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes
const (
	OutcomeSent      = "sent"
	OutcomeInvalid   = "invalid"
	OutcomeMalformed = "malformed"
	OutcomeFailed    = "failed"
)

// Metrics holds the relay's collectors. Each instance registers with its own
// registerer so tests can use a fresh registry.
type Metrics struct {
	Submissions      *prometheus.CounterVec
	DeliveryFailures *prometheus.CounterVec
	DispatchDuration prometheus.Histogram
	HTTPRequests     *prometheus.CounterVec
	CORSRejections   prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contact_submissions_total",
				Help: "Total number of contact form submissions by outcome",
			},
			[]string{"outcome"},
		),
		DeliveryFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contact_delivery_failures_total",
				Help: "Total number of failed deliveries by stage",
			},
			[]string{"stage"},
		),
		DispatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "contact_dispatch_duration_seconds",
				Help:    "Time spent persisting and relaying a submission",
				Buckets: prometheus.DefBuckets,
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contact_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		CORSRejections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "contact_cors_rejections_total",
				Help: "Total number of requests rejected by the origin allow-list",
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.Submissions,
		m.DeliveryFailures,
		m.DispatchDuration,
		m.HTTPRequests,
		m.CORSRejections,
	)

	return m
}

// NewDefaultMetrics registers with a fresh registry that also carries the Go
// runtime and process collectors
func NewDefaultMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetrics(reg)
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
