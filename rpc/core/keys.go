package core

import (
	"time"

	"github.com/sophiatx/alexandria/crypto"
	ctypes "github.com/sophiatx/alexandria/rpc/core/types"
	rpctypes "github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

// GenerateKeyPair creates a new random key pair.
func (env *Environment) GenerateKeyPair(*rpctypes.Context) (res *ctypes.ResultKeyPair, err error) {
	defer env.observe("generate_key_pair", time.Now(), &err)

	privKey, err := env.Engine.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(privKey)
	return env.keyPair(privKey)
}

// GenerateKeyPairFromBrainKey derives the key pair of a brain key phrase.
// The phrase is normalized first, so case and spacing do not matter.
func (env *Environment) GenerateKeyPairFromBrainKey(_ *rpctypes.Context, brainKey string) (res *ctypes.ResultKeyPair, err error) {
	defer env.observe("generate_key_pair_from_brain_key", time.Now(), &err)

	privKey, err := env.Engine.DerivePrivateKeyFromBrainKey(brainKey)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(privKey)
	return env.keyPair(privKey)
}

// SuggestBrainKey draws a new brain key phrase.
func (env *Environment) SuggestBrainKey(*rpctypes.Context) (res *ctypes.ResultBrainKey, err error) {
	defer env.observe("suggest_brain_key", time.Now(), &err)

	info, err := env.Engine.SuggestBrainKey()
	if err != nil {
		return nil, err
	}
	return &ctypes.ResultBrainKey{
		BrainKey:   info.BrainKey,
		PrivateKey: info.WifPrivKey,
		PublicKey:  info.PubKey,
	}, nil
}

// GetPublicKey returns the public key string of a WIF private key.
func (env *Environment) GetPublicKey(_ *rpctypes.Context, privateKey string) (res *ctypes.ResultPublicKey, err error) {
	defer env.observe("get_public_key", time.Now(), &err)

	err = env.withWif(privateKey, func(privKey []byte) error {
		pub, err := env.publicKeyString(privKey)
		if err != nil {
			return err
		}
		res = &ctypes.ResultPublicKey{PublicKey: pub}
		return nil
	})
	return res, err
}

func (env *Environment) keyPair(privKey []byte) (*ctypes.ResultKeyPair, error) {
	wifKey, err := env.Engine.PrivateKeyToWif(privKey)
	if err != nil {
		return nil, err
	}
	pub, err := env.publicKeyString(privKey)
	if err != nil {
		return nil, err
	}
	return &ctypes.ResultKeyPair{PrivateKey: wifKey, PublicKey: pub}, nil
}

func (env *Environment) publicKeyString(privKey []byte) (string, error) {
	pubKey, err := env.Engine.GetPublicKey(privKey)
	if err != nil {
		return "", err
	}
	return env.Engine.PublicKeyToString(pubKey)
}
