package client_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/sophiatx/alexandria/config"
	"github.com/sophiatx/alexandria/libs/log"
	nm "github.com/sophiatx/alexandria/node"
	"github.com/sophiatx/alexandria/rpc/client"
	rpchttp "github.com/sophiatx/alexandria/rpc/client/http"
	"github.com/sophiatx/alexandria/rpc/client/local"
	"github.com/sophiatx/alexandria/rpc/core"
	rpctypes "github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

const (
	wifOne    = "5HpHagT65TZzG1PH3CSu63k8DbpvD8s5ip4nEB3kEsreAnchuDf"
	pubKeyOne = "SPH5p78kHbL33Rn3JWkTWRE2B9uz6gy4r1KbfAKLNQGE3ovMBS5bu"
)

func startNode(t *testing.T) *nm.Node {
	t.Helper()
	config := cfg.TestConfig().SetRoot(t.TempDir())
	n, err := nm.NewNode(config, log.NewNopLogger(),
		nm.WithMetricsProvider(func(string) *nm.Metrics { return nm.NopMetrics() }))
	require.NoError(t, err)
	require.NoError(t, n.Start())
	t.Cleanup(func() { assert.NoError(t, n.Stop()) })
	return n
}

// getClients returns an http and a local client to the same node.
func getClients(t *testing.T) map[string]client.Client {
	t.Helper()
	n := startNode(t)

	c, err := rpchttp.New(n.Listeners()[0])
	require.NoError(t, err)
	require.Equal(t, n.Listeners()[0], c.Remote())

	return map[string]client.Client{
		"http":  c,
		"local": local.New(n),
	}
}

func rpcCode(t *testing.T, err error) int {
	t.Helper()
	var rpcErr *rpctypes.RPCError
	require.ErrorAs(t, err, &rpcErr)
	return rpcErr.Code
}

func TestStatus(t *testing.T) {
	for name, c := range getClients(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := c.Health(ctx)
			require.NoError(t, err)

			status, err := c.Status(ctx)
			require.NoError(t, err)
			assert.Equal(t, "SPH", status.AddressPrefix)
			assert.Len(t, status.ChainID, 64)
		})
	}
}

func TestKeys(t *testing.T) {
	for name, c := range getClients(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			pub, err := c.GetPublicKey(ctx, wifOne)
			require.NoError(t, err)
			assert.Equal(t, pubKeyOne, pub.PublicKey)

			kp, err := c.GenerateKeyPair(ctx)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(kp.PublicKey, "SPH"))
			pub, err = c.GetPublicKey(ctx, kp.PrivateKey)
			require.NoError(t, err)
			assert.Equal(t, kp.PublicKey, pub.PublicKey)

			bk, err := c.SuggestBrainKey(ctx)
			require.NoError(t, err)
			fromBrain, err := c.GenerateKeyPairFromBrainKey(ctx, strings.ToLower(bk.BrainKey))
			require.NoError(t, err)
			assert.Equal(t, bk.PrivateKey, fromBrain.PrivateKey)
			assert.Equal(t, bk.PublicKey, fromBrain.PublicKey)

			_, err = c.GetPublicKey(ctx, "not a wif")
			require.Error(t, err)
			assert.NotZero(t, rpcCode(t, err))
		})
	}
}

func TestSignAndVerify(t *testing.T) {
	tx := hex.EncodeToString([]byte("serialized transaction"))

	for name, c := range getClients(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			digest, err := c.GetTransactionDigest(ctx, tx, "")
			require.NoError(t, err)
			require.Len(t, digest.Digest, 64)

			other, err := c.GetTransactionDigest(ctx, tx, strings.Repeat("ab", 32))
			require.NoError(t, err)
			assert.NotEqual(t, digest.Digest, other.Digest)

			sig, err := c.SignDigest(ctx, digest.Digest, wifOne)
			require.NoError(t, err)
			require.Len(t, sig.Signature, 130)

			ok, err := c.VerifySignature(ctx, digest.Digest, pubKeyOne, sig.Signature)
			require.NoError(t, err)
			assert.True(t, ok.Valid)

			ok, err = c.VerifySignature(ctx, other.Digest, pubKeyOne, sig.Signature)
			require.NoError(t, err)
			assert.False(t, ok.Valid)

			signed, err := c.AddSignature(ctx, json.RawMessage(`{"operations":[],"signatures":[]}`), sig.Signature)
			require.NoError(t, err)
			var decoded struct {
				Signatures []string `json:"signatures"`
			}
			require.NoError(t, json.Unmarshal(signed.Transaction, &decoded))
			assert.Equal(t, []string{sig.Signature}, decoded.Signatures)

			_, err = c.AddSignature(ctx, json.RawMessage(`{"operations":[]}`), sig.Signature)
			assert.Equal(t, core.CodeMalformedTransaction, rpcCode(t, err))
		})
	}
}

func TestMemoAndEncoding(t *testing.T) {
	for name, c := range getClients(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			bob, err := c.GenerateKeyPair(ctx)
			require.NoError(t, err)

			sealed, err := c.EncryptMemo(ctx, "hello bob", wifOne, bob.PublicKey)
			require.NoError(t, err)
			opened, err := c.DecryptMemo(ctx, sealed.Memo, bob.PrivateKey, pubKeyOne)
			require.NoError(t, err)
			assert.Equal(t, "hello bob", opened.Memo)

			b58, err := c.ToBase58(ctx, "00000102")
			require.NoError(t, err)
			assert.Equal(t, "115T", b58.Base58)

			raw, err := c.FromBase58(ctx, "115T")
			require.NoError(t, err)
			assert.Equal(t, "00000102", raw.Data)

			_, err = c.FromBase58(ctx, "0OIl")
			assert.Equal(t, core.CodeInvalidEncoding, rpcCode(t, err))
		})
	}
}
