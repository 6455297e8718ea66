package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for the requests counter
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeQueueFull = "queue_full"
)

// Registry owns the Prometheus registry and the gateway's collectors.
// It is optional: the gateway's JSON metrics work without it.
type Registry struct {
	prometheusRegistry *prometheus.Registry

	// Requests counts dispatched requests by pattern and outcome
	Requests *prometheus.CounterVec

	// QueueDepth tracks buffered requests per queue-backed pattern
	QueueDepth *prometheus.GaugeVec

	// Latency observes dispatch duration per pattern
	Latency *prometheus.HistogramVec
}

// NewRegistry creates a registry with the gateway collectors and Go runtime
// metrics registered.
func NewRegistry() *Registry {
	prometheusRegistry := prometheus.NewRegistry()

	r := &Registry{
		prometheusRegistry: prometheusRegistry,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appgateway_requests_total",
			Help: "Requests dispatched through the gateway by endpoint pattern and outcome",
		}, []string{"pattern", "outcome"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "appgateway_queue_depth",
			Help: "Buffered requests per queue-backed endpoint pattern",
		}, []string{"pattern"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "appgateway_request_duration_seconds",
			Help:    "Dispatch duration per endpoint pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"pattern"}),
	}

	prometheusRegistry.MustRegister(
		r.Requests,
		r.QueueDepth,
		r.Latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// Handler returns the Prometheus exposition handler for this registry
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(
		r.prometheusRegistry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	)
}

// ObserveSuccess records a successful dispatch
func (r *Registry) ObserveSuccess(pattern string, latency time.Duration) {
	r.Requests.WithLabelValues(pattern, OutcomeSuccess).Inc()
	r.Latency.WithLabelValues(pattern).Observe(latency.Seconds())
}

// ObserveFailure records a failed dispatch
func (r *Registry) ObserveFailure(pattern string) {
	r.Requests.WithLabelValues(pattern, OutcomeFailure).Inc()
}

// ObserveQueueFull records a backpressure rejection
func (r *Registry) ObserveQueueFull(pattern string) {
	r.Requests.WithLabelValues(pattern, OutcomeQueueFull).Inc()
}

// SetQueueDepth records the current queue depth for a pattern
func (r *Registry) SetQueueDepth(pattern string, depth int) {
	r.QueueDepth.WithLabelValues(pattern).Set(float64(depth))
}

// RemoveEndpoint drops the label series for an unregistered pattern
func (r *Registry) RemoveEndpoint(pattern string) {
	r.Requests.DeletePartialMatch(prometheus.Labels{"pattern": pattern})
	r.QueueDepth.DeleteLabelValues(pattern)
	r.Latency.DeleteLabelValues(pattern)
}
