package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/sophiatx/alexandria/config"
	"github.com/sophiatx/alexandria/libs/log"
	nm "github.com/sophiatx/alexandria/node"
	ctypes "github.com/sophiatx/alexandria/rpc/core/types"
)

func TestStatusCmd(t *testing.T) {
	t.Cleanup(func() { clearConfig(t) })

	nodeConfig := cfg.TestConfig().SetRoot(t.TempDir())
	nodeConfig.Chain.AddressPrefix = "TST"
	n, err := nm.NewNode(nodeConfig, log.NewNopLogger(),
		nm.WithMetricsProvider(func(string) *nm.Metrics { return nm.NopMetrics() }))
	require.NoError(t, err)
	require.NoError(t, n.Start())
	t.Cleanup(func() { assert.NoError(t, n.Stop()) })

	status := new(ctypes.ResultStatus)
	mustRun(t, t.TempDir(), "", status, "status", "--node", n.Listeners()[0])
	assert.Equal(t, "TST", status.AddressPrefix)
	assert.Equal(t, nodeConfig.Chain.ChainID, status.ChainID)

	_, err = runCmd(t, t.TempDir(), "", "status", "--node", "tcp://127.0.0.1:1")
	assert.Error(t, err)
}
