// Package client defines the Go API of the signing service. Every call
// mirrors one RPC route and takes its parameters in the same string forms.
//
// There are two implementations. http talks to a remote node over JSON-RPC;
// local calls the handlers of an in-process node directly. Both report
// failures as *rpctypes.RPCError values carrying the same codes.
package client

import (
	"context"
	"encoding/json"

	ctypes "github.com/sophiatx/alexandria/rpc/core/types"
)

// Client wraps most important rpc calls a client would make.
type Client interface {
	StatusClient
	KeysClient
	SignClient
	MemoClient
	EncodingClient
}

// StatusClient provides access to general service info.
type StatusClient interface {
	Status(ctx context.Context) (*ctypes.ResultStatus, error)
	Health(ctx context.Context) (*ctypes.ResultHealth, error)
}

// KeysClient creates and inspects keys. Private keys travel as WIF.
type KeysClient interface {
	GenerateKeyPair(ctx context.Context) (*ctypes.ResultKeyPair, error)
	GenerateKeyPairFromBrainKey(ctx context.Context, brainKey string) (*ctypes.ResultKeyPair, error)
	SuggestBrainKey(ctx context.Context) (*ctypes.ResultBrainKey, error)
	GetPublicKey(ctx context.Context, privateKey string) (*ctypes.ResultPublicKey, error)
}

// SignClient computes digests and produces and checks signatures. Binary
// values are hex encoded.
type SignClient interface {
	GetTransactionDigest(ctx context.Context, transaction, chainID string) (*ctypes.ResultDigest, error)
	SignDigest(ctx context.Context, digest, privateKey string) (*ctypes.ResultSignature, error)
	VerifySignature(ctx context.Context, digest, publicKey, signature string) (*ctypes.ResultVerify, error)
	AddSignature(ctx context.Context, transaction json.RawMessage, signature string) (*ctypes.ResultTransaction, error)
}

// MemoClient seals and opens memos between two key owners.
type MemoClient interface {
	EncryptMemo(ctx context.Context, memo, privateKey, publicKey string) (*ctypes.ResultMemo, error)
	DecryptMemo(ctx context.Context, memo, privateKey, publicKey string) (*ctypes.ResultMemo, error)
}

// EncodingClient converts between hex and base58.
type EncodingClient interface {
	ToBase58(ctx context.Context, data string) (*ctypes.ResultBase58, error)
	FromBase58(ctx context.Context, data string) (*ctypes.ResultBytes, error)
}
