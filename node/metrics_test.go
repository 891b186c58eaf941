package node

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/sophiatx/alexandria/config"
)

func TestDefaultMetricsProvider(t *testing.T) {
	config := cfg.TestInstrumentationConfig()
	m := DefaultMetricsProvider(config)("chain")
	require.NotNil(t, m.RPC)

	config.Prometheus = true
	config.Namespace = "alexandria_test"
	m = DefaultMetricsProvider(config)("chain")
	m.RPC.Requests.With("method", "status", "result", "ok").Add(1)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "alexandria_test_rpc_requests")
}
