package http

import (
	"context"
	"encoding/json"
	"net/http"

	rpcclient "github.com/sophiatx/alexandria/rpc/client"
	ctypes "github.com/sophiatx/alexandria/rpc/core/types"
	jsonrpcclient "github.com/sophiatx/alexandria/rpc/jsonrpc/client"
)

/*
HTTP is a Client implementation that communicates with a node over
JSON-RPC, using POST requests.

Request batching and websocket subscriptions are not supported: each call
is one request.

Example:

	c, err := New("http://192.168.1.10:8095")
	if err != nil {
		// handle error
	}

	res, err := c.SignDigest(context.TODO(), digest, wifKey)
	if err != nil {
		// handle error
	}
*/
type HTTP struct {
	remote string
	caller *jsonrpcclient.Client
}

var _ rpcclient.Client = (*HTTP)(nil)

// New takes a remote endpoint in the form <protocol>://<host>:<port>. An
// error is returned on invalid remote.
func New(remote string) (*HTTP, error) {
	httpClient, err := jsonrpcclient.DefaultHTTPClient(remote)
	if err != nil {
		return nil, err
	}
	return NewWithClient(remote, httpClient)
}

// NewWithClient allows for setting a custom http client (See New). An error
// is returned on invalid remote. The function panics when client is nil.
func NewWithClient(remote string, client *http.Client) (*HTTP, error) {
	if client == nil {
		panic("nil http.Client provided")
	}

	rc, err := jsonrpcclient.NewWithHTTPClient(remote, client)
	if err != nil {
		return nil, err
	}

	return &HTTP{remote: remote, caller: rc}, nil
}

// Remote returns the remote network address in a string form.
func (c *HTTP) Remote() string {
	return c.remote
}

func call[T any](ctx context.Context, c *HTTP, method string, params map[string]any) (*T, error) {
	result := new(T)
	if _, err := c.caller.Call(ctx, method, params, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTP) Status(ctx context.Context) (*ctypes.ResultStatus, error) {
	return call[ctypes.ResultStatus](ctx, c, "status", map[string]any{})
}

func (c *HTTP) Health(ctx context.Context) (*ctypes.ResultHealth, error) {
	return call[ctypes.ResultHealth](ctx, c, "health", map[string]any{})
}

func (c *HTTP) GenerateKeyPair(ctx context.Context) (*ctypes.ResultKeyPair, error) {
	return call[ctypes.ResultKeyPair](ctx, c, "generate_key_pair", map[string]any{})
}

func (c *HTTP) GenerateKeyPairFromBrainKey(ctx context.Context, brainKey string) (*ctypes.ResultKeyPair, error) {
	return call[ctypes.ResultKeyPair](ctx, c, "generate_key_pair_from_brain_key",
		map[string]any{"brain_key": brainKey})
}

func (c *HTTP) SuggestBrainKey(ctx context.Context) (*ctypes.ResultBrainKey, error) {
	return call[ctypes.ResultBrainKey](ctx, c, "suggest_brain_key", map[string]any{})
}

func (c *HTTP) GetPublicKey(ctx context.Context, privateKey string) (*ctypes.ResultPublicKey, error) {
	return call[ctypes.ResultPublicKey](ctx, c, "get_public_key", map[string]any{"private_key": privateKey})
}

func (c *HTTP) GetTransactionDigest(ctx context.Context, transaction, chainID string) (*ctypes.ResultDigest, error) {
	params := map[string]any{"transaction": transaction}
	if chainID != "" {
		params["chain_id"] = chainID
	}
	return call[ctypes.ResultDigest](ctx, c, "get_transaction_digest", params)
}

func (c *HTTP) SignDigest(ctx context.Context, digest, privateKey string) (*ctypes.ResultSignature, error) {
	return call[ctypes.ResultSignature](ctx, c, "sign_digest",
		map[string]any{"digest": digest, "private_key": privateKey})
}

func (c *HTTP) VerifySignature(ctx context.Context, digest, publicKey, signature string) (*ctypes.ResultVerify, error) {
	return call[ctypes.ResultVerify](ctx, c, "verify_signature",
		map[string]any{"digest": digest, "public_key": publicKey, "signature": signature})
}

func (c *HTTP) AddSignature(
	ctx context.Context,
	transaction json.RawMessage,
	signature string,
) (*ctypes.ResultTransaction, error) {
	return call[ctypes.ResultTransaction](ctx, c, "add_signature",
		map[string]any{"transaction": transaction, "signature": signature})
}

func (c *HTTP) EncryptMemo(ctx context.Context, memo, privateKey, publicKey string) (*ctypes.ResultMemo, error) {
	return call[ctypes.ResultMemo](ctx, c, "encrypt_memo",
		map[string]any{"memo": memo, "private_key": privateKey, "public_key": publicKey})
}

func (c *HTTP) DecryptMemo(ctx context.Context, memo, privateKey, publicKey string) (*ctypes.ResultMemo, error) {
	return call[ctypes.ResultMemo](ctx, c, "decrypt_memo",
		map[string]any{"memo": memo, "private_key": privateKey, "public_key": publicKey})
}

func (c *HTTP) ToBase58(ctx context.Context, data string) (*ctypes.ResultBase58, error) {
	return call[ctypes.ResultBase58](ctx, c, "to_base58", map[string]any{"data": data})
}

func (c *HTTP) FromBase58(ctx context.Context, data string) (*ctypes.ResultBytes, error) {
	return call[ctypes.ResultBytes](ctx, c, "from_base58", map[string]any{"data": data})
}
