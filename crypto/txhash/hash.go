package txhash

import (
	"fmt"
	gohash "hash"

	"github.com/minio/sha256-simd"

	"github.com/sophiatx/alexandria/crypto"
	"github.com/sophiatx/alexandria/types"
)

// DigestSize is the length of a transaction digest.
const DigestSize = 32

var (
	// Hash function used for transaction hashing.
	hash Hash = simdSHA256{}

	// fmtHash converts a digest to a string.
	fmtHash = defaultFmtHash
)

func defaultFmtHash(bz []byte) string {
	return fmt.Sprintf("%X", bz)
}

// Hash is an interface for transaction hashing.
type Hash interface {
	// New returns a new hash.Hash.
	New() gohash.Hash
}

type simdSHA256 struct{}

func (simdSHA256) New() gohash.Hash { return sha256.New() }

// Digest is the value a transaction signature commits to.
type Digest [DigestSize]byte

func (d Digest) Bytes() []byte {
	return d[:]
}

func (d Digest) String() string {
	return fmtHash(d[:])
}

// Sum returns H(chainID ‖ tx).
func Sum(chainID types.ChainID, tx []byte) Digest {
	var d Digest
	if _, ok := hash.(simdSHA256); ok {
		copy(d[:], crypto.Sha256Many(chainID[:], tx))
		return d
	}

	h := New()
	h.Write(chainID[:])
	h.Write(tx)
	copy(d[:], h.Sum(nil))
	return d
}

// New returns a new hash.Hash.
func New() gohash.Hash {
	return hash.New()
}

// Set sets the hash function used for transaction hashing. It panics if h
// does not produce DigestSize bytes.
//
// Only call this function before signing anything.
func Set(h Hash) {
	if size := h.New().Size(); size != DigestSize {
		panic(fmt.Sprintf("txhash: hash produces %d bytes, want %d", size, DigestSize))
	}
	hash = h
}

// Reset restores SHA-256.
func Reset() {
	hash = simdSHA256{}
}

// SetFmtHash sets the function used to convert a digest to a string.
//
// Default is fmt.Sprintf("%X", bz).
func SetFmtHash(f func([]byte) string) {
	fmtHash = f
}
