package node

import (
	cfg "github.com/sophiatx/alexandria/config"
	rpccore "github.com/sophiatx/alexandria/rpc/core"
)

// Metrics groups the metrics of every component a Node runs.
type Metrics struct {
	RPC *rpccore.Metrics
}

// PrometheusMetrics registers the node metrics with the default Prometheus
// registry. It must be called at most once per process.
func PrometheusMetrics(config *cfg.InstrumentationConfig, labels ...string) *Metrics {
	return &Metrics{
		RPC: rpccore.PrometheusMetrics(config.Namespace, labels...),
	}
}

func NopMetrics() *Metrics {
	return &Metrics{RPC: rpccore.NopMetrics()}
}

// MetricsProvider returns the metrics of a node serving chainID.
type MetricsProvider func(chainID string) *Metrics

// DefaultMetricsProvider returns Metrics built using the Prometheus client
// library if Prometheus is enabled. Otherwise, it returns no-op Metrics.
func DefaultMetricsProvider(config *cfg.InstrumentationConfig) MetricsProvider {
	return func(chainID string) *Metrics {
		if config.IsPrometheusEnabled() {
			return PrometheusMetrics(config, "chain_id", chainID)
		}
		return NopMetrics()
	}
}
