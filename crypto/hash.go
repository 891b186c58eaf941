package crypto

import (
	"crypto/sha512"

	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/ripemd160" //nolint: staticcheck // ripemd160 is part of the pubkey text format
)

const (
	// Sha256Size is the size of a SHA-256 checksum in bytes.
	Sha256Size = sha256.Size
	// Sha512Size is the size of a SHA-512 checksum in bytes.
	Sha512Size = sha512.Size
	// Ripemd160Size is the size of a RIPEMD-160 checksum in bytes.
	Ripemd160Size = ripemd160.Size
)

func Sha256(bytes []byte) []byte {
	hasher := sha256.New()
	hasher.Write(bytes)
	return hasher.Sum(nil)
}

// Sha256Many hashes the concatenation of data and rest without copying them
// into one buffer first.
func Sha256Many(data []byte, rest ...[]byte) []byte {
	hasher := sha256.New()
	hasher.Write(data)
	for _, bz := range rest {
		hasher.Write(bz)
	}
	return hasher.Sum(nil)
}

// DoubleSha256 returns sha256(sha256(bytes)), the checksum used by Base58Check
// and WIF.
func DoubleSha256(bytes []byte) []byte {
	first := sha256.Sum256(bytes)
	second := sha256.Sum256(first[:])
	return second[:]
}

func Sha512(bytes []byte) []byte {
	sum := sha512.Sum512(bytes)
	return sum[:]
}

func Ripemd160(bytes []byte) []byte {
	hasher := ripemd160.New()
	hasher.Write(bytes)
	return hasher.Sum(nil)
}
