package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the SDK collectors.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	eventAttempts   *prometheus.CounterVec
	eventsDropped   prometheus.Counter
	decisions       *prometheus.CounterVec
}

// New creates unregistered collectors under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parcelvoy",
				Name:      "api_requests_total",
				Help:      "Total number of Parcelvoy API requests by endpoint and outcome",
			},
			[]string{"method", "endpoint", "outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "parcelvoy",
				Name:      "api_request_duration_seconds",
				Help:      "Duration of Parcelvoy API requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		eventAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parcelvoy",
				Name:      "event_delivery_attempts_total",
				Help:      "Event batch delivery attempts by result",
			},
			[]string{"result"},
		),
		eventsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parcelvoy",
				Name:      "events_dropped_total",
				Help:      "Events dropped after the retry budget was exhausted",
			},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parcelvoy",
				Name:      "inapp_decisions_total",
				Help:      "In-app notification display decisions",
			},
			[]string{"decision"},
		),
	}
}

// Collectors returns every collector, for custom registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.requestDuration, m.eventAttempts, m.eventsDropped, m.decisions}
}

// Register registers all collectors, joining any registration errors.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	var errs []error
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ObserveRequest records one API call. The outcome label is the status code,
// "decode_error" for a success status whose body could not be decoded, or
// "transport_error" when no response arrived (status 0).
func (m *Metrics) ObserveRequest(method, endpoint string, status int, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "transport_error"
	switch {
	case err != nil && status >= 200 && status < 300:
		outcome = "decode_error"
	case status != 0:
		outcome = strconv.Itoa(status)
	case err == nil:
		outcome = "ok"
	}
	m.requests.WithLabelValues(method, endpoint, outcome).Inc()
	m.requestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

// ObserveEventAttempt records one event batch delivery attempt.
func (m *Metrics) ObserveEventAttempt(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.eventAttempts.WithLabelValues(result).Inc()
}

// ObserveEventsDropped records events abandoned after the last retry.
func (m *Metrics) ObserveEventsDropped(n int) {
	if m == nil {
		return
	}
	m.eventsDropped.Add(float64(n))
}

// ObserveDecision records an in-app decision (show, skip, consume, none).
func (m *Metrics) ObserveDecision(decision string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision).Inc()
}
