package engine

import (
	"errors"
	"fmt"

	"github.com/sophiatx/alexandria/crypto/base58"
	"github.com/sophiatx/alexandria/crypto/memo"
	"github.com/sophiatx/alexandria/crypto/secp256k1"
	"github.com/sophiatx/alexandria/crypto/wif"
	"github.com/sophiatx/alexandria/types"
)

// ErrNotInitialized is returned by every operation called before Init.
var ErrNotInitialized = errors.New("engine is not initialized")

// ErrorKind is the category of an engine error. Callers that cannot inspect
// Go error chains switch on it.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	InvalidKey
	InvalidEncoding
	ChecksumMismatch
	InvalidWif
	SignatureGeneration
	Decryption
	MalformedTransaction
	NotInitialized
	InvalidArgument
)

var kindNames = map[ErrorKind]string{
	KindUnknown:          "unknown",
	InvalidKey:           "invalid key",
	InvalidEncoding:      "invalid encoding",
	ChecksumMismatch:     "checksum mismatch",
	InvalidWif:           "invalid wif",
	SignatureGeneration:  "signature generation",
	Decryption:           "decryption",
	MalformedTransaction: "malformed transaction",
	NotInitialized:       "not initialized",
	InvalidArgument:      "invalid argument",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned by every failing engine operation.
type Error struct {
	Op   string
	Kind ErrorKind
	Err  error
}

// Error prints the operation and the wrapped error. The kind is not repeated:
// every wrapped error already starts with its sentinel text.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindUnknown if it did not come from the
// engine.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: classify(err), Err: err}
}

// classify maps package errors to kinds. The order matters: a memo that fails
// to decode wraps both ErrDecryption and a base58 error, and a WIF with a bad
// payload wraps both ErrInvalidWif and a key error.
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrNotInitialized):
		return NotInitialized
	case errors.Is(err, memo.ErrDecryption):
		return Decryption
	case errors.Is(err, base58.ErrChecksumMismatch):
		return ChecksumMismatch
	case errors.Is(err, wif.ErrInvalidWif):
		return InvalidWif
	case errors.Is(err, base58.ErrInvalidEncoding):
		return InvalidEncoding
	case errors.Is(err, secp256k1.ErrSignatureGeneration):
		return SignatureGeneration
	case errors.Is(err, types.ErrMalformedTransaction):
		return MalformedTransaction
	case errors.Is(err, secp256k1.ErrInvalidPrivKey),
		errors.Is(err, secp256k1.ErrInvalidPubKey),
		errors.Is(err, secp256k1.ErrEmptyBrainKey):
		return InvalidKey
	case errors.Is(err, secp256k1.ErrInvalidDigest),
		errors.Is(err, secp256k1.ErrInvalidSignature),
		errors.Is(err, types.ErrInvalidChainID),
		errors.Is(err, memo.ErrMemoTooLarge):
		return InvalidArgument
	default:
		return KindUnknown
	}
}
