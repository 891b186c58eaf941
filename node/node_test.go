package node

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/sophiatx/alexandria/config"
	"github.com/sophiatx/alexandria/libs/log"
	ctypes "github.com/sophiatx/alexandria/rpc/core/types"
	"github.com/sophiatx/alexandria/rpc/jsonrpc/client"
	rpctypes "github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

func testConfig(t *testing.T) *cfg.Config {
	t.Helper()
	return cfg.TestConfig().SetRoot(t.TempDir())
}

func startNode(t *testing.T, config *cfg.Config) *Node {
	t.Helper()
	n, err := NewNode(config, log.NewNopLogger(), WithMetricsProvider(func(string) *Metrics { return NopMetrics() }))
	require.NoError(t, err)
	require.NoError(t, n.Start())
	t.Cleanup(func() {
		if n.IsListening() {
			assert.NoError(t, n.Stop())
		}
	})
	return n
}

func TestNodeStartStop(t *testing.T) {
	t.Cleanup(leaktest.CheckTimeout(t, 5*time.Second))

	n := startNode(t, testConfig(t))
	assert.True(t, n.IsListening())
	require.Len(t, n.Listeners(), 1)
	assert.True(t, strings.HasPrefix(n.Listeners()[0], "tcp://127.0.0.1:"))
	assert.True(t, n.Engine().IsInitialized())
	assert.True(t, n.ChainID().IsZero())

	assert.ErrorIs(t, n.Start(), ErrAlreadyStarted)

	c, err := client.New(n.Listeners()[0])
	require.NoError(t, err)
	status := new(ctypes.ResultStatus)
	_, err = c.Call(context.Background(), "status", nil, status)
	require.NoError(t, err)
	assert.Equal(t, "SPH", status.AddressPrefix)

	require.NoError(t, n.Stop())
	assert.False(t, n.IsListening())
	assert.Empty(t, n.Listeners())
	assert.ErrorIs(t, n.Stop(), ErrNotStarted)

	_, err = c.Call(context.Background(), "status", nil, status)
	assert.Error(t, err)
}

func TestNodeUnixAndTCP(t *testing.T) {
	config := testConfig(t)
	sock := filepath.Join(t.TempDir(), "rpc.sock")
	config.RPC.ListenAddress = "tcp://127.0.0.1:0, unix://" + sock

	n := startNode(t, config)
	require.Len(t, n.Listeners(), 2)
	assert.Equal(t, "unix://"+sock, n.Listeners()[1])

	for _, addr := range n.Listeners() {
		c, err := client.New(addr)
		require.NoError(t, err)
		_, err = c.Call(context.Background(), "health", nil, &ctypes.ResultHealth{})
		assert.NoError(t, err, addr)
	}
}

func TestNodeChainConfig(t *testing.T) {
	config := testConfig(t)
	config.Chain.AddressPrefix = "TST"
	config.Chain.CompressedWif = true
	config.Chain.ChainID = strings.Repeat("ab", 32)

	n := startNode(t, config)
	c, err := client.New(n.Listeners()[0])
	require.NoError(t, err)

	status := new(ctypes.ResultStatus)
	_, err = c.Call(context.Background(), "status", nil, status)
	require.NoError(t, err)
	assert.Equal(t, "TST", status.AddressPrefix)
	assert.Equal(t, config.Chain.ChainID, status.ChainID)

	kp := new(ctypes.ResultKeyPair)
	_, err = c.Call(context.Background(), "generate_key_pair", nil, kp)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(kp.PublicKey, "TST"))
	assert.Contains(t, "KL", kp.PrivateKey[:1])
}

func TestNewNodeInvalidConfig(t *testing.T) {
	config := testConfig(t)
	config.Chain.ChainID = "xyz"

	_, err := NewNode(config, log.NewNopLogger())
	var cfgErr ErrInvalidConfig
	assert.ErrorAs(t, err, &cfgErr)

	config = testConfig(t)
	config.RPC.MaxOpenConnections = -1
	_, err = NewNode(config, log.NewNopLogger())
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNodeStartFailsOnBadAddress(t *testing.T) {
	config := testConfig(t)
	config.RPC.ListenAddress = "127.0.0.1:0"

	n, err := NewNode(config, log.NewNopLogger(), WithMetricsProvider(func(string) *Metrics { return NopMetrics() }))
	require.NoError(t, err)
	assert.Error(t, n.Start())
	assert.False(t, n.IsListening())
}

func TestNodeWebsocket(t *testing.T) {
	n := startNode(t, testConfig(t))
	addr := strings.TrimPrefix(n.Listeners()[0], "tcp://")

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/websocket", nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	req, err := rpctypes.MapToRequest(rpctypes.JSONRPCIntID(7), "to_base58", map[string]any{"data": "00000102"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(req))

	var res rpctypes.RPCResponse
	require.NoError(t, conn.ReadJSON(&res))
	require.Nil(t, res.Error)
	assert.Equal(t, rpctypes.JSONRPCIntID(7), res.ID)
	assert.JSONEq(t, `{"base58":"115T"}`, string(res.Result))
}

func TestRPCHandlerCORS(t *testing.T) {
	n, err := NewNode(testConfig(t), log.NewNopLogger(), WithMetricsProvider(func(string) *Metrics { return NopMetrics() }))
	require.NoError(t, err)

	rpcConfig := cfg.TestRPCConfig()
	rpcConfig.CORSAllowedOrigins = []string{"https://wallet.example"}
	handler := NewRPCHandler(n.env, rpcConfig, log.NewNopLogger())

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://wallet.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://wallet.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	plain := NewRPCHandler(n.env, cfg.TestRPCConfig(), log.NewNopLogger())
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://wallet.example")
	rec = httptest.NewRecorder()
	plain.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSplitAndTrimEmpty(t *testing.T) {
	testCases := []struct {
		s        string
		sep      string
		cutset   string
		expected []string
	}{
		{"a,b,c", ",", " ", []string{"a", "b", "c"}},
		{" a , b , c ", ",", " ", []string{"a", "b", "c"}},
		{" a, ,b,c ", ",", " ", []string{"a", "b", "c"}},
		{" , ", ",", " ", []string{}},
		{"", ",", " ", []string{}},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, splitAndTrimEmpty(tc.s, tc.sep, tc.cutset), "%s", tc.s)
	}
}
