// Package metrics exposes parkzone's Prometheus metrics on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parkzone"

var durationBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// Registry holds every parkzone collector. Each Registry is independent,
// so tests can create their own.
type Registry struct {
	reg *prometheus.Registry

	upstreamTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	httpTotal        *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	editorEvents     *prometheus.CounterVec
	zones            *prometheus.GaugeVec
	saveFailures     prometheus.Counter
}

// New creates a Registry with Go runtime and process collectors.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parktrack_requests_total",
			Help:      "ParkTrack API calls by method, route and status code (0 = no response).",
		}, []string{"method", "route", "code"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parktrack_request_duration_ms",
			Help:      "ParkTrack API call duration in milliseconds.",
			Buckets:   durationBuckets,
		}, []string{"method", "route"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Editor API requests by method, route pattern and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "Editor API request duration in milliseconds.",
			Buckets:   durationBuckets,
		}, []string{"route"}),
		editorEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_events_total",
			Help:      "Editor state changes by event type.",
		}, []string{"type"}),
		zones: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "editor_zones",
			Help:      "Zones loaded in the editor for the selected camera.",
		}, []string{"camera_id"}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_errors_total",
			Help:      "Editor operations that ended in a user-visible error.",
		}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.upstreamTotal,
		r.upstreamDuration,
		r.httpTotal,
		r.httpDuration,
		r.editorEvents,
		r.zones,
		r.saveFailures,
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveRequest records a ParkTrack API call. It satisfies
// parktrack.Observer.
func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration, _ error) {
	r.upstreamTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.upstreamDuration.WithLabelValues(method, route).Observe(ms(elapsed))
}

// ObserveHTTP records one request to the editor API.
func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	r.httpTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route).Observe(ms(elapsed))
}

// CountEvent counts one editor event. Error events also bump the error
// counter.
func (r *Registry) CountEvent(eventType string) {
	r.editorEvents.WithLabelValues(eventType).Inc()
	if eventType == "error" {
		r.saveFailures.Inc()
	}
}

// SetZones records how many zones are loaded for a camera. Switching
// cameras resets the gauge so only the selected camera is reported.
func (r *Registry) SetZones(cameraID int64, n int) {
	r.zones.Reset()
	if cameraID == 0 {
		return
	}
	r.zones.WithLabelValues(strconv.FormatInt(cameraID, 10)).Set(float64(n))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
