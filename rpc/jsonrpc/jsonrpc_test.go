package jsonrpc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophiatx/alexandria/libs/log"
	"github.com/sophiatx/alexandria/rpc/jsonrpc/client"
	"github.com/sophiatx/alexandria/rpc/jsonrpc/server"
	"github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

const testVal = "acbd"

type ResultEcho struct {
	Value string `json:"value"`
}

type ResultEchoInt struct {
	Value int `json:"value"`
}

type ResultEchoBytes struct {
	Value []byte `json:"value"`
}

var errEchoFailed = &types.RPCError{Code: -32042, Message: "Echo failed"}

// Define some routes.
var Routes = map[string]*server.RPCFunc{
	"echo":       server.NewRPCFunc(EchoResult, "arg"),
	"echo_bytes": server.NewRPCFunc(EchoBytesResult, "arg"),
	"echo_int":   server.NewRPCFunc(EchoIntResult, "arg"),
	"echo_fail":  server.NewRPCFunc(EchoFail, ""),
}

func EchoResult(_ *types.Context, v string) (*ResultEcho, error) {
	return &ResultEcho{v}, nil
}

func EchoIntResult(_ *types.Context, v int) (*ResultEchoInt, error) {
	return &ResultEchoInt{v}, nil
}

func EchoBytesResult(_ *types.Context, v []byte) (*ResultEchoBytes, error) {
	return &ResultEchoBytes{v}, nil
}

func EchoFail(*types.Context) (*ResultEcho, error) {
	return nil, errEchoFailed
}

// startServer serves Routes on addr until the test ends.
func startServer(t *testing.T, addr string) string {
	t.Helper()

	mux := http.NewServeMux()
	server.RegisterRPCFuncs(mux, Routes, log.NewNopLogger())

	l, err := server.Listen(addr, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Serve(ctx, l, mux, log.NewNopLogger(), server.DefaultConfig())
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	if l.Addr().Network() == "unix" {
		return "unix://" + l.Addr().String()
	}
	return "tcp://" + l.Addr().String()
}

func echoViaHTTP(ctx context.Context, cl client.HTTPClient, val string) (string, error) {
	params := map[string]any{
		"arg": val,
	}
	result := new(ResultEcho)
	if _, err := cl.Call(ctx, "echo", params, result); err != nil {
		return "", err
	}
	return result.Value, nil
}

func echoIntViaHTTP(ctx context.Context, cl client.HTTPClient, val int) (int, error) {
	params := map[string]any{
		"arg": val,
	}
	result := new(ResultEchoInt)
	if _, err := cl.Call(ctx, "echo_int", params, result); err != nil {
		return 0, err
	}
	return result.Value, nil
}

func echoBytesViaHTTP(ctx context.Context, cl client.HTTPClient, bytes []byte) ([]byte, error) {
	params := map[string]any{
		"arg": bytes,
	}
	result := new(ResultEchoBytes)
	if _, err := cl.Call(ctx, "echo_bytes", params, result); err != nil {
		return []byte{}, err
	}
	return result.Value, nil
}

func testWithHTTPClient(t *testing.T, cl client.HTTPClient) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := echoViaHTTP(ctx, cl, testVal)
	require.NoError(t, err)
	assert.Equal(t, testVal, got)

	got2, err := echoBytesViaHTTP(ctx, cl, []byte{0x00, 0x01, 0xff})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0xff}, got2)

	got3, err := echoIntViaHTTP(ctx, cl, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, got3)

	_, err = cl.Call(ctx, "echo_fail", nil, new(ResultEcho))
	var rpcErr *types.RPCError
	require.True(t, errors.As(err, &rpcErr), "got %v", err)
	assert.Equal(t, errEchoFailed.Code, rpcErr.Code)
}

func TestServersAndClientsBasic(t *testing.T) {
	// cleanups run last-in first-out, so this runs after the servers stop
	t.Cleanup(leaktest.CheckTimeout(t, 10*time.Second))

	addrs := map[string]string{
		"tcp":  startServer(t, "tcp://127.0.0.1:0"),
		"unix": startServer(t, "unix://"+filepath.Join(t.TempDir(), "rpc.sock")),
	}

	for name, addr := range addrs {
		t.Run(name, func(t *testing.T) {
			cl1, err := client.NewURI(addr)
			require.NoError(t, err)
			testWithHTTPClient(t, cl1)

			cl2, err := client.New(addr)
			require.NoError(t, err)
			testWithHTTPClient(t, cl2)
		})
	}
}

func TestClientRejectsBadAddress(t *testing.T) {
	_, err := client.New("tcp://[::1")
	var addrErr client.ErrInvalidAddress
	assert.ErrorAs(t, err, &addrErr)
}

func TestClientRequestError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := "tcp://" + l.Addr().String()
	require.NoError(t, l.Close())

	cl, err := client.New(addr)
	require.NoError(t, err)

	_, err = echoViaHTTP(context.Background(), cl, testVal)
	var reqErr client.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "echo", reqErr.Method)
	assert.Equal(t, client.StageSend, reqErr.Stage)
	assert.Contains(t, err.Error(), "echo send request")
}
