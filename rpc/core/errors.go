package core

import (
	"errors"
	"fmt"

	"github.com/sophiatx/alexandria/engine"
	rpctypes "github.com/sophiatx/alexandria/rpc/jsonrpc/types"
)

// Error codes of engine failures, one per engine.ErrorKind.
const (
	CodeInvalidKey           = -32001
	CodeInvalidEncoding      = -32002
	CodeChecksumMismatch     = -32003
	CodeInvalidWif           = -32004
	CodeSignatureGeneration  = -32005
	CodeDecryption           = -32006
	CodeMalformedTransaction = -32007
	CodeNotInitialized       = -32008

	codeInvalidParams = -32602
	codeInternal      = -32603
)

var kindCodes = map[engine.ErrorKind]int{
	engine.InvalidKey:           CodeInvalidKey,
	engine.InvalidEncoding:      CodeInvalidEncoding,
	engine.ChecksumMismatch:     CodeChecksumMismatch,
	engine.InvalidWif:           CodeInvalidWif,
	engine.SignatureGeneration:  CodeSignatureGeneration,
	engine.Decryption:           CodeDecryption,
	engine.MalformedTransaction: CodeMalformedTransaction,
	engine.NotInitialized:       CodeNotInitialized,
	engine.InvalidArgument:      codeInvalidParams,
}

// ErrInvalidParam is returned for parameters that cannot be decoded before
// they reach the engine.
type ErrInvalidParam struct {
	Name   string
	Source error
}

func (e ErrInvalidParam) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Name, e.Source)
}

func (e ErrInvalidParam) Unwrap() error { return e.Source }

// toRPCError attaches an RPC error code to err.
func toRPCError(err error) *rpctypes.RPCError {
	var paramErr ErrInvalidParam
	if errors.As(err, &paramErr) {
		return &rpctypes.RPCError{Code: codeInvalidParams, Message: "Invalid params", Data: err.Error()}
	}

	kind := engine.KindOf(err)
	code, ok := kindCodes[kind]
	if !ok {
		return &rpctypes.RPCError{Code: codeInternal, Message: "Internal error", Data: err.Error()}
	}
	return &rpctypes.RPCError{Code: code, Message: kind.String(), Data: err.Error()}
}

// resultLabel is the value of the "result" metrics label for err.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var paramErr ErrInvalidParam
	if errors.As(err, &paramErr) {
		return "invalid params"
	}
	return engine.KindOf(err).String()
}
