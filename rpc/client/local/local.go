package local

import (
	"context"
	"encoding/json"

	nm "github.com/sophiatx/alexandria/node"
	rpcclient "github.com/sophiatx/alexandria/rpc/client"
	"github.com/sophiatx/alexandria/rpc/core"
	ctypes "github.com/sophiatx/alexandria/rpc/core/types"
	rpctypes "github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

/*
Local is a Client implementation that directly executes the rpc
functions on a given node, without going through HTTP.

This implementation is useful for:

* Running tests against a node in-process without the overhead
of going through an http server
* Embedding the signing service in another Go program.

For real clients, you probably want to use the http package.
*/
type Local struct {
	ctx *rpctypes.Context
	env *core.Environment
}

// New configures a client that calls the Node directly. The node does not
// have to be started.
func New(node *nm.Node) *Local {
	return &Local{
		ctx: &rpctypes.Context{},
		env: node.RPCEnvironment(),
	}
}

var _ rpcclient.Client = (*Local)(nil)

func (c *Local) Status(context.Context) (*ctypes.ResultStatus, error) {
	return c.env.Status(c.ctx)
}

func (c *Local) Health(context.Context) (*ctypes.ResultHealth, error) {
	return c.env.Health(c.ctx)
}

func (c *Local) GenerateKeyPair(context.Context) (*ctypes.ResultKeyPair, error) {
	return c.env.GenerateKeyPair(c.ctx)
}

func (c *Local) GenerateKeyPairFromBrainKey(_ context.Context, brainKey string) (*ctypes.ResultKeyPair, error) {
	return c.env.GenerateKeyPairFromBrainKey(c.ctx, brainKey)
}

func (c *Local) SuggestBrainKey(context.Context) (*ctypes.ResultBrainKey, error) {
	return c.env.SuggestBrainKey(c.ctx)
}

func (c *Local) GetPublicKey(_ context.Context, privateKey string) (*ctypes.ResultPublicKey, error) {
	return c.env.GetPublicKey(c.ctx, privateKey)
}

func (c *Local) GetTransactionDigest(_ context.Context, transaction, chainID string) (*ctypes.ResultDigest, error) {
	return c.env.GetTransactionDigest(c.ctx, transaction, chainID)
}

func (c *Local) SignDigest(_ context.Context, digest, privateKey string) (*ctypes.ResultSignature, error) {
	return c.env.SignDigest(c.ctx, digest, privateKey)
}

func (c *Local) VerifySignature(_ context.Context, digest, publicKey, signature string) (*ctypes.ResultVerify, error) {
	return c.env.VerifySignature(c.ctx, digest, publicKey, signature)
}

func (c *Local) AddSignature(
	_ context.Context,
	transaction json.RawMessage,
	signature string,
) (*ctypes.ResultTransaction, error) {
	return c.env.AddSignature(c.ctx, transaction, signature)
}

func (c *Local) EncryptMemo(_ context.Context, memo, privateKey, publicKey string) (*ctypes.ResultMemo, error) {
	return c.env.EncryptMemo(c.ctx, memo, privateKey, publicKey)
}

func (c *Local) DecryptMemo(_ context.Context, memo, privateKey, publicKey string) (*ctypes.ResultMemo, error) {
	return c.env.DecryptMemo(c.ctx, memo, privateKey, publicKey)
}

func (c *Local) ToBase58(_ context.Context, data string) (*ctypes.ResultBase58, error) {
	return c.env.ToBase58(c.ctx, data)
}

func (c *Local) FromBase58(_ context.Context, data string) (*ctypes.ResultBytes, error) {
	return c.env.FromBase58(c.ctx, data)
}
