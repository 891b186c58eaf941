package core

import (
	"encoding/hex"
	"encoding/json"
	"time"

	ctypes "github.com/sophiatx/alexandria/rpc/core/types"
	rpctypes "github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

// GetTransactionDigest returns the digest to sign for a serialized
// transaction. chainID defaults to the chain the service is configured for.
func (env *Environment) GetTransactionDigest(
	_ *rpctypes.Context,
	transaction string,
	chainID string,
) (res *ctypes.ResultDigest, err error) {
	defer env.observe("get_transaction_digest", time.Now(), &err)

	tx, err := decodeHex("transaction", transaction)
	if err != nil {
		return nil, err
	}
	chain := env.ChainID.Bytes()
	if chainID != "" {
		if chain, err = decodeHex("chain_id", chainID); err != nil {
			return nil, err
		}
	}

	digest, err := env.Engine.TransactionDigest(tx, chain)
	if err != nil {
		return nil, err
	}
	return &ctypes.ResultDigest{Digest: hex.EncodeToString(digest)}, nil
}

// SignDigest signs a 32 byte digest with a WIF private key.
func (env *Environment) SignDigest(
	_ *rpctypes.Context,
	digest string,
	privateKey string,
) (res *ctypes.ResultSignature, err error) {
	defer env.observe("sign_digest", time.Now(), &err)

	d, err := decodeHex("digest", digest)
	if err != nil {
		return nil, err
	}
	err = env.withWif(privateKey, func(privKey []byte) error {
		sig, err := env.Engine.Sign(d, privKey)
		if err != nil {
			return err
		}
		res = &ctypes.ResultSignature{Signature: hex.EncodeToString(sig)}
		return nil
	})
	return res, err
}

// VerifySignature reports whether signature over digest was made by the
// owner of publicKey.
func (env *Environment) VerifySignature(
	_ *rpctypes.Context,
	digest string,
	publicKey string,
	signature string,
) (res *ctypes.ResultVerify, err error) {
	defer env.observe("verify_signature", time.Now(), &err)

	d, err := decodeHex("digest", digest)
	if err != nil {
		return nil, err
	}
	sig, err := decodeHex("signature", signature)
	if err != nil {
		return nil, err
	}
	pub, err := env.Engine.PublicKeyFromString(publicKey)
	if err != nil {
		return nil, err
	}

	valid, err := env.Engine.Verify(d, pub, sig)
	if err != nil {
		return nil, err
	}
	return &ctypes.ResultVerify{Valid: valid}, nil
}

// AddSignature appends a signature to the signatures array of a JSON
// transaction. The transaction may be given as an object or as a string.
func (env *Environment) AddSignature(
	_ *rpctypes.Context,
	transaction json.RawMessage,
	signature string,
) (res *ctypes.ResultTransaction, err error) {
	defer env.observe("add_signature", time.Now(), &err)

	tx, err := transactionParam(transaction)
	if err != nil {
		return nil, err
	}
	sig, err := decodeHex("signature", signature)
	if err != nil {
		return nil, err
	}

	signed, err := env.Engine.AddSignature(tx, sig)
	if err != nil {
		return nil, err
	}
	return &ctypes.ResultTransaction{Transaction: json.RawMessage(signed)}, nil
}
