package core

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "rpc"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Time spent serving a request, labeled by method.
	RequestDurationSeconds metrics.Histogram
	// Number of served requests, labeled by method and result (ok or the
	// error kind).
	Requests metrics.Counter
}

// PrometheusMetrics returns Metrics built using the Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		RequestDurationSeconds: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Time spent serving a request, labeled by method.",
			Buckets:   stdprometheus.ExponentialBuckets(0.00005, 4, 8),
		}, append(labels, "method")).With(labelsAndValues...),
		Requests: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "requests",
			Help:      "Number of served requests, labeled by method and result.",
		}, append(labels, "method", "result")).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		RequestDurationSeconds: discard.NewHistogram(),
		Requests:               discard.NewCounter(),
	}
}
