package core

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/sophiatx/alexandria/crypto"
	"github.com/sophiatx/alexandria/engine"
	"github.com/sophiatx/alexandria/libs/log"
	"github.com/sophiatx/alexandria/types"
)

// Environment contains the objects used to serve the RPC APIs.
// A Node creates an object of this type at startup.
type Environment struct {
	Engine  *engine.Engine
	ChainID types.ChainID

	Logger  log.Logger
	Metrics *Metrics
}

// observe records the outcome of one call to method and replaces a failure
// with an error that carries its RPC code. Call it deferred, with the
// handler's named error result.
func (env *Environment) observe(method string, begin time.Time, errp *error) {
	env.Metrics.RequestDurationSeconds.With("method", method).Observe(time.Since(begin).Seconds())
	env.Metrics.Requests.With("method", method, "result", resultLabel(*errp)).Add(1)

	if *errp == nil {
		return
	}
	env.Logger.Debug("request failed", "method", method, "err", *errp)
	*errp = toRPCError(*errp)
}

// decodeHex decodes a hex parameter. An optional 0x prefix is accepted.
func decodeHex(name, s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidParam{Name: name, Source: err}
	}
	return b, nil
}

// transactionParam accepts a transaction either as a JSON object or as a
// string holding one.
func transactionParam(raw json.RawMessage) (string, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", ErrInvalidParam{Name: "transaction", Source: err}
		}
		return s, nil
	}
	return string(raw), nil
}

// withWif decodes a WIF private key and hands it to fn. The decoded key is
// zeroed when fn returns.
func (env *Environment) withWif(wifKey string, fn func(privKey []byte) error) error {
	privKey, err := env.Engine.WifToPrivateKey(wifKey)
	if err != nil {
		return err
	}
	defer crypto.Zero(privKey)
	return fn(privKey)
}
