// Package base58 implements the Base58 text encoding with the bitcoin
// alphabet, and Base58Check, which appends a four byte double SHA-256
// checksum to the payload before encoding.
package base58

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/sophiatx/alexandria/crypto"
)

// ChecksumSize is the number of checksum bytes appended by EncodeChecked.
const ChecksumSize = 4

var (
	// ErrInvalidEncoding is returned when the input contains characters
	// outside the alphabet, or is too short to hold a checksum.
	ErrInvalidEncoding = errors.New("invalid base58 encoding")
	// ErrChecksumMismatch is returned when the trailing checksum does not
	// match the payload.
	ErrChecksumMismatch = errors.New("base58 checksum mismatch")
)

// Encode encodes b. Each leading zero byte becomes a leading '1'. The empty
// input encodes to the empty string.
func Encode(b []byte) string {
	return base58.Encode(b)
}

// Decode is the inverse of Encode.
func Decode(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return b, nil
}

// EncodeChecked encodes payload followed by the first four bytes of
// sha256(sha256(payload)).
func EncodeChecked(payload []byte) string {
	buf := make([]byte, 0, len(payload)+ChecksumSize)
	buf = append(buf, payload...)
	buf = append(buf, checksum(payload)...)
	return Encode(buf)
}

// DecodeChecked decodes s and verifies its checksum, returning the payload.
func DecodeChecked(s string) ([]byte, error) {
	b, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if len(b) < ChecksumSize {
		return nil, fmt.Errorf("%w: decoded length %d is shorter than the checksum", ErrInvalidEncoding, len(b))
	}
	payload, sum := b[:len(b)-ChecksumSize], b[len(b)-ChecksumSize:]
	if subtle.ConstantTimeCompare(sum, checksum(payload)) != 1 {
		return nil, ErrChecksumMismatch
	}
	return payload, nil
}

func checksum(payload []byte) []byte {
	return crypto.DoubleSha256(payload)[:ChecksumSize]
}
