package core

import (
	"time"

	ctypes "github.com/sophiatx/alexandria/rpc/core/types"
	rpctypes "github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

// EncryptMemo encrypts memo from the owner of privateKey to the owner of
// publicKey.
func (env *Environment) EncryptMemo(
	_ *rpctypes.Context,
	memo string,
	privateKey string,
	publicKey string,
) (res *ctypes.ResultMemo, err error) {
	defer env.observe("encrypt_memo", time.Now(), &err)

	pub, err := env.Engine.PublicKeyFromString(publicKey)
	if err != nil {
		return nil, err
	}
	err = env.withWif(privateKey, func(privKey []byte) error {
		encrypted, err := env.Engine.EncryptMemo(memo, privKey, pub)
		if err != nil {
			return err
		}
		res = &ctypes.ResultMemo{Memo: encrypted}
		return nil
	})
	return res, err
}

// DecryptMemo decrypts a memo with privateKey. publicKey is the key of the
// other party.
func (env *Environment) DecryptMemo(
	_ *rpctypes.Context,
	memo string,
	privateKey string,
	publicKey string,
) (res *ctypes.ResultMemo, err error) {
	defer env.observe("decrypt_memo", time.Now(), &err)

	pub, err := env.Engine.PublicKeyFromString(publicKey)
	if err != nil {
		return nil, err
	}
	err = env.withWif(privateKey, func(privKey []byte) error {
		plaintext, err := env.Engine.DecryptMemo(memo, privKey, pub)
		if err != nil {
			return err
		}
		res = &ctypes.ResultMemo{Memo: plaintext}
		return nil
	})
	return res, err
}
