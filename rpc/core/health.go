package core

import (
	"github.com/sophiatx/alexandria/engine"
	ctypes "github.com/sophiatx/alexandria/rpc/core/types"
	rpctypes "github.com/sophiatx/alexandria/rpc/jsonrpc/types"
	"github.com/sophiatx/alexandria/version"
)

// Health gets node health. Returns empty result (200 OK) on success; an
// error when the engine has not been initialized.
func (env *Environment) Health(*rpctypes.Context) (*ctypes.ResultHealth, error) {
	if !env.Engine.IsInitialized() {
		return nil, &rpctypes.RPCError{
			Code:    CodeNotInitialized,
			Message: engine.NotInitialized.String(),
			Data:    engine.ErrNotInitialized.Error(),
		}
	}
	return &ctypes.ResultHealth{}, nil
}

// Status returns the version and chain parameters of the service.
func (env *Environment) Status(*rpctypes.Context) (*ctypes.ResultStatus, error) {
	return &ctypes.ResultStatus{
		Version:       version.String(),
		ChainID:       env.ChainID.String(),
		AddressPrefix: env.Engine.PubKeyPrefix(),
	}, nil
}
