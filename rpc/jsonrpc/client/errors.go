package client

import "fmt"

// Stages of a call, reported in RequestError.
const (
	StageEncodeParams = "encode params"
	StageMarshal      = "marshal request"
	StageCreate       = "create request"
	StageSend         = "send request"
	StageReadResponse = "read response"
	StageDecodeReply  = "unmarshal response"
	StageDecodeResult = "unmarshal result"
)

type ErrInvalidAddress struct {
	Addr   string
	Source error
}

func (e ErrInvalidAddress) Error() string {
	return fmt.Sprintf("invalid address %q: %v", e.Addr, e.Source)
}

func (e ErrInvalidAddress) Unwrap() error {
	return e.Source
}

// RequestError is returned when a call fails before the server's answer could
// be decoded. Errors reported by the server itself are *types.RPCError.
type RequestError struct {
	Method string
	Stage  string
	Source error
}

func (e RequestError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Source)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Stage, e.Source)
}

func (e RequestError) Unwrap() error {
	return e.Source
}

type ErrResponseIDMismatch struct {
	Expected string
	Got      string
}

func (e ErrResponseIDMismatch) Error() string {
	return fmt.Sprintf("response ID (%s) does not match request ID (%s)", e.Got, e.Expected)
}
