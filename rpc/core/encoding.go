package core

import (
	"encoding/hex"
	"time"

	ctypes "github.com/sophiatx/alexandria/rpc/core/types"
	rpctypes "github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

// ToBase58 encodes hex data as base58.
func (env *Environment) ToBase58(_ *rpctypes.Context, data string) (res *ctypes.ResultBase58, err error) {
	defer env.observe("to_base58", time.Now(), &err)

	b, err := decodeHex("data", data)
	if err != nil {
		return nil, err
	}
	s, err := env.Engine.ToBase58(b)
	if err != nil {
		return nil, err
	}
	return &ctypes.ResultBase58{Base58: s}, nil
}

// FromBase58 decodes base58 text and returns it as hex.
func (env *Environment) FromBase58(_ *rpctypes.Context, data string) (res *ctypes.ResultBytes, err error) {
	defer env.observe("from_base58", time.Now(), &err)

	b, err := env.Engine.FromBase58(data)
	if err != nil {
		return nil, err
	}
	return &ctypes.ResultBytes{Data: hex.EncodeToString(b)}, nil
}
