// Package metrics backs §4.6's named measurements with Prometheus client
// instruments (DS-1): github.com/prometheus/client_golang is already a
// transitive dependency of the teacher family (bolt/go.mod's indirect
// require block, pulled in through the benchmark-comparison frameworks) but
// is never imported by any production file in bolt or shockwave — this is
// the first place in the lineage that actually wires it to a concern.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sink is the measurement surface the connection loop and dispatch code
// call into. It is always non-nil: when metrics are disabled, New returns a
// noopSink so call sites never need to branch on whether metrics are
// enabled (§4.6, "failures in the metrics sink must never fail the
// request").
type Sink interface {
	ConnectionOpened()
	ConnectionClosed()
	RequestCompleted(method, scheme string, status int, keepAlive bool, duration time.Duration)
	RequestErrored(method, scheme string)
	BodyBytesReceived(n int64)
	BodyBytesSent(n int64)
}

// promSink is the enabled implementation. Instruments are registered
// against a private registry owned by the sink, not the global default
// registry, so multiple engine instances in one process (e.g. in tests)
// never collide on metric names.
type promSink struct {
	registry *prometheus.Registry

	openConnections prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	responseTime    *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	bodyBytesSent   prometheus.Counter
	bodyBytesRecv   prometheus.Counter
}

// New returns an enabled Sink backed by a fresh private registry, or a
// no-op Sink if enabled is false.
func New(enabled bool) Sink {
	if !enabled {
		return noopSink{}
	}
	reg := prometheus.NewRegistry()
	s := &promSink{
		registry: reg,
		openConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blaze_open_connections",
			Help: "Number of currently open connections.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blaze_requests_total",
			Help: "Total requests processed.",
		}, []string{"method", "status", "scheme", "keepalive"}),
		responseTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blaze_response_duration_milliseconds",
			Help:    "Time from dispatch start to completion of response write, in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 16),
		}, []string{"method", "status", "scheme", "keepalive"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blaze_request_errors_total",
			Help: "Request error events.",
		}, []string{"method", "scheme"}),
		bodyBytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blaze_response_body_bytes_total",
			Help: "Response body bytes written.",
		}),
		bodyBytesRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blaze_request_body_bytes_total",
			Help: "Request body bytes received.",
		}),
	}
	reg.MustRegister(s.openConnections, s.requestsTotal, s.responseTime, s.errorsTotal, s.bodyBytesSent, s.bodyBytesRecv)
	return s
}

// Registry exposes the private Prometheus registry so a caller can wire it
// into their own /metrics exporter. Export/scraping transport is explicitly
// out of scope for the core (§1); this is the seam.
func Registry(s Sink) *prometheus.Registry {
	if p, ok := s.(*promSink); ok {
		return p.registry
	}
	return nil
}

func (s *promSink) ConnectionOpened() { s.openConnections.Inc() }
func (s *promSink) ConnectionClosed() { s.openConnections.Dec() }

func (s *promSink) RequestCompleted(method, scheme string, status int, keepAlive bool, duration time.Duration) {
	labels := prometheus.Labels{
		"method":    method,
		"status":    strconv.Itoa(status),
		"scheme":    scheme,
		"keepalive": boolStr(keepAlive),
	}
	s.requestsTotal.With(labels).Inc()
	s.responseTime.With(labels).Observe(float64(duration.Microseconds()) / 1000.0)
}

func (s *promSink) RequestErrored(method, scheme string) {
	s.errorsTotal.With(prometheus.Labels{"method": method, "scheme": scheme}).Inc()
}

func (s *promSink) BodyBytesReceived(n int64) { s.bodyBytesRecv.Add(float64(n)) }
func (s *promSink) BodyBytesSent(n int64)     { s.bodyBytesSent.Add(float64(n)) }

// noopSink is returned when metrics are disabled.
type noopSink struct{}

func (noopSink) ConnectionOpened()                                                          {}
func (noopSink) ConnectionClosed()                                                           {}
func (noopSink) RequestCompleted(method, scheme string, status int, keepAlive bool, d time.Duration) {}
func (noopSink) RequestErrored(method, scheme string)                                        {}
func (noopSink) BodyBytesReceived(n int64)                                                   {}
func (noopSink) BodyBytesSent(n int64)                                                        {}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
