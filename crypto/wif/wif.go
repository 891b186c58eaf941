// Package wif encodes private keys in Wallet Import Format:
//
//	base58check(0x80 ‖ key [‖ 0x01])
//
// The trailing 0x01 marks a key whose public half is used compressed.
// SophiaTX wallets write the uncompressed form; both forms decode.
package wif

import (
	"errors"
	"fmt"

	"github.com/sophiatx/alexandria/crypto"
	"github.com/sophiatx/alexandria/crypto/base58"
	"github.com/sophiatx/alexandria/crypto/secp256k1"
)

const (
	// Version is the network version byte prefixed to the key.
	Version byte = 0x80

	compressedFlag byte = 0x01
)

// ErrInvalidWif is returned for payloads with the wrong length, version byte
// or compression flag, or an out-of-range key. Checksum failures are reported
// as base58.ErrChecksumMismatch instead.
var ErrInvalidWif = errors.New("invalid WIF")

// Encode returns the WIF text of key.
func Encode(key secp256k1.PrivKey, compressed bool) string {
	payload := make([]byte, 0, 1+secp256k1.PrivKeySize+1)
	payload = append(payload, Version)
	payload = append(payload, key...)
	if compressed {
		payload = append(payload, compressedFlag)
	}
	defer crypto.Zero(payload)
	return base58.EncodeChecked(payload)
}

// Decode parses WIF text, returning the key and whether it is flagged
// compressed.
func Decode(s string) (secp256k1.PrivKey, bool, error) {
	payload, err := base58.DecodeChecked(s)
	if err != nil {
		if errors.Is(err, base58.ErrChecksumMismatch) {
			return nil, false, fmt.Errorf("wif: %w", err)
		}
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidWif, err)
	}
	defer crypto.Zero(payload)

	var compressed bool
	switch len(payload) {
	case 1 + secp256k1.PrivKeySize:
	case 1 + secp256k1.PrivKeySize + 1:
		if payload[len(payload)-1] != compressedFlag {
			return nil, false, fmt.Errorf("%w: unknown suffix byte 0x%02x", ErrInvalidWif, payload[len(payload)-1])
		}
		compressed = true
	default:
		return nil, false, fmt.Errorf("%w: payload is %d bytes", ErrInvalidWif, len(payload))
	}
	if payload[0] != Version {
		return nil, false, fmt.Errorf("%w: unknown version byte 0x%02x", ErrInvalidWif, payload[0])
	}

	key, err := secp256k1.PrivKeyFromBytes(payload[1 : 1+secp256k1.PrivKeySize])
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidWif, err)
	}
	return key, compressed, nil
}
