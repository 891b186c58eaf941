package core

import (
	rpc "github.com/sophiatx/alexandria/rpc/jsonrpc/server"
)

type RoutesMap map[string]*rpc.RPCFunc

// GetRoutes returns a map of available routes.
func (env *Environment) GetRoutes() RoutesMap {
	return RoutesMap{
		// info API
		"health": rpc.NewRPCFunc(env.Health, ""),
		"status": rpc.NewRPCFunc(env.Status, ""),

		// keys API
		"generate_key_pair":                rpc.NewRPCFunc(env.GenerateKeyPair, ""),
		"generate_key_pair_from_brain_key": rpc.NewRPCFunc(env.GenerateKeyPairFromBrainKey, "brain_key"),
		"suggest_brain_key":                rpc.NewRPCFunc(env.SuggestBrainKey, ""),
		"get_public_key":                   rpc.NewRPCFunc(env.GetPublicKey, "private_key"),

		// signing API
		"get_transaction_digest": rpc.NewRPCFunc(env.GetTransactionDigest, "transaction,chain_id"),
		"sign_digest":            rpc.NewRPCFunc(env.SignDigest, "digest,private_key"),
		"verify_signature":       rpc.NewRPCFunc(env.VerifySignature, "digest,public_key,signature"),
		"add_signature":          rpc.NewRPCFunc(env.AddSignature, "transaction,signature"),

		// memo API
		"encrypt_memo": rpc.NewRPCFunc(env.EncryptMemo, "memo,private_key,public_key"),
		"decrypt_memo": rpc.NewRPCFunc(env.DecryptMemo, "memo,private_key,public_key"),

		// encoding API
		"to_base58":   rpc.NewRPCFunc(env.ToBase58, "data"),
		"from_base58": rpc.NewRPCFunc(env.FromBase58, "data"),
	}
}
