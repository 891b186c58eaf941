package secp256k1

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"strings"

	secp256k1 "github.com/btcsuite/btcd/btcec/v2"

	"github.com/sophiatx/alexandria/crypto"
	"github.com/sophiatx/alexandria/crypto/base58"
)

// -------------------------------------
const (
	KeyType     = "secp256k1"
	PrivKeySize = 32

	// DefaultPubKeyPrefix is prepended to the text form of SophiaTX public
	// keys.
	DefaultPubKeyPrefix = "SPH"

	pubKeyChecksumSize = 4
)

var (
	ErrInvalidPrivKey = errors.New("invalid secp256k1 private key")
	ErrInvalidPubKey  = errors.New("invalid secp256k1 public key")
)

// PrivKey is a 32 byte big-endian scalar in [1, n-1].
type PrivKey []byte

// PrivKeyFromBytes validates b and returns a copy of it as a PrivKey.
func PrivKeyFromBytes(b []byte) (PrivKey, error) {
	privKey := PrivKey(bytes.Clone(b))
	if err := privKey.Validate(); err != nil {
		privKey.Zero()
		return nil, err
	}
	return privKey, nil
}

// Validate checks the length and range of the scalar.
func (privKey PrivKey) Validate() error {
	if len(privKey) != PrivKeySize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPrivKey, PrivKeySize, len(privKey))
	}
	if !isValidScalar(privKey) {
		return fmt.Errorf("%w: scalar is zero or not below the curve order", ErrInvalidPrivKey)
	}
	return nil
}

func isValidScalar(b []byte) bool {
	var s secp256k1.ModNScalar
	overflow := s.SetByteSlice(b)
	valid := !overflow && !s.IsZero()
	s.Zero()
	return valid
}

// Bytes returns the raw scalar. The slice aliases the key.
func (privKey PrivKey) Bytes() []byte {
	return []byte(privKey)
}

// PubKey performs the point-scalar multiplication from the privKey on the
// generator point to get the pubkey. It panics if the key is invalid; call
// Validate on untrusted input first.
func (privKey PrivKey) PubKey() PubKey {
	if err := privKey.Validate(); err != nil {
		panic(err)
	}
	priv, pub := secp256k1.PrivKeyFromBytes(privKey)
	defer priv.Zero()
	return PubKey(pub.SerializeCompressed())
}

// Equals runs in constant time based on length of the keys.
func (privKey PrivKey) Equals(other PrivKey) bool {
	return subtle.ConstantTimeCompare(privKey, other) == 1
}

func (privKey PrivKey) Type() string {
	return KeyType
}

// Zero wipes the key in place.
func (privKey PrivKey) Zero() {
	crypto.Zero(privKey)
}

// String never prints key material.
func (privKey PrivKey) String() string {
	return "PrivKeySecp256k1{...}"
}

// GoString keeps %#v from dumping the bytes.
func (privKey PrivKey) GoString() string {
	return privKey.String()
}

// GenPrivKey generates a new ECDSA private key on curve secp256k1 private key.
// It uses OS randomness to generate the private key.
func GenPrivKey() PrivKey {
	privKey, err := GenPrivKeyFromReader(crypto.CReader())
	if err != nil {
		panic(err)
	}
	return privKey
}

// GenPrivKeyFromReader generates a new secp256k1 private key using the
// provided reader. Candidates outside [1, n-1] are discarded and redrawn.
func GenPrivKeyFromReader(rand io.Reader) (PrivKey, error) {
	privKeyBytes := make([]byte, PrivKeySize)

	for {
		if err := crypto.ReadFull(rand, privKeyBytes); err != nil {
			crypto.Zero(privKeyBytes)
			return nil, err
		}

		// break if we found a valid point (i.e. > 0 and < N == curveOrder)
		if isValidScalar(privKeyBytes) {
			break
		}
	}

	return PrivKey(privKeyBytes), nil
}

//-------------------------------------

// PubKeySize is the size of a compressed point: a 0x02/0x03 parity byte
// followed by the x coordinate.
const PubKeySize = secp256k1.PubKeyBytesLenCompressed

// PubKey is a compressed secp256k1 point.
type PubKey []byte

// PubKeyFromBytes parses a compressed point and returns a copy of it.
func PubKeyFromBytes(b []byte) (PubKey, error) {
	if len(b) != PubKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPubKey, PubKeySize, len(b))
	}
	if !secp256k1.IsCompressedPubKey(b) {
		return nil, fmt.Errorf("%w: not a compressed point", ErrInvalidPubKey)
	}
	if _, err := secp256k1.ParsePubKey(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPubKey, err)
	}
	return PubKey(bytes.Clone(b)), nil
}

func (pubKey PubKey) Bytes() []byte {
	return []byte(pubKey)
}

func (pubKey PubKey) String() string {
	return fmt.Sprintf("PubKeySecp256k1{%X}", []byte(pubKey))
}

func (pubKey PubKey) Equals(other PubKey) bool {
	return bytes.Equal(pubKey, other)
}

func (pubKey PubKey) Type() string {
	return KeyType
}

// Text returns prefix followed by base58(pubkey ‖ ripemd160(pubkey)[:4]).
func (pubKey PubKey) Text(prefix string) string {
	buf := make([]byte, 0, PubKeySize+pubKeyChecksumSize)
	buf = append(buf, pubKey...)
	buf = append(buf, crypto.Ripemd160(pubKey)[:pubKeyChecksumSize]...)
	return prefix + base58.Encode(buf)
}

// ParsePubKeyText is the inverse of PubKey.Text. A checksum failure is
// reported as base58.ErrChecksumMismatch.
func ParsePubKeyText(s, prefix string) (PubKey, error) {
	if !strings.HasPrefix(s, prefix) {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidPubKey, prefix)
	}
	raw, err := base58.Decode(s[len(prefix):])
	if err != nil {
		return nil, err
	}
	if len(raw) != PubKeySize+pubKeyChecksumSize {
		return nil, fmt.Errorf("%w: expected %d bytes after decoding, got %d",
			ErrInvalidPubKey, PubKeySize+pubKeyChecksumSize, len(raw))
	}
	key, sum := raw[:PubKeySize], raw[PubKeySize:]
	if subtle.ConstantTimeCompare(sum, crypto.Ripemd160(key)[:pubKeyChecksumSize]) != 1 {
		return nil, base58.ErrChecksumMismatch
	}
	return PubKeyFromBytes(key)
}

//-------------------------------------

// KeyPair holds a private key and the public key derived from it.
type KeyPair struct {
	PrivKey PrivKey
	PubKey  PubKey
}

// NewKeyPair derives the public half of privKey. The pair keeps its own copy
// of the private key.
func NewKeyPair(privKey PrivKey) (KeyPair, error) {
	owned, err := PrivKeyFromBytes(privKey)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{PrivKey: owned, PubKey: owned.PubKey()}, nil
}

// GenKeyPair generates a fresh key pair from OS randomness.
func GenKeyPair() KeyPair {
	privKey := GenPrivKey()
	return KeyPair{PrivKey: privKey, PubKey: privKey.PubKey()}
}

// Zero wipes the private half.
func (kp KeyPair) Zero() {
	kp.PrivKey.Zero()
}
