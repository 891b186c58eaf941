package secp256k1

import (
	"crypto/subtle"
	"errors"
	"fmt"

	secp256k1 "github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

const (
	// SignatureSize is the size of a compact recoverable signature:
	// header ‖ r ‖ s.
	SignatureSize = 65
	// DigestSize is the only digest length accepted by Sign and
	// VerifySignature.
	DigestSize = 32

	compactSigMagicOffset = 27
	compactSigCompPubKey  = 4
	maxRecoveryID         = 3
)

var (
	ErrInvalidSignature = errors.New("invalid secp256k1 signature")
	ErrInvalidDigest    = errors.New("invalid digest")
	// ErrSignatureGeneration means no recovery id reproduced the signer's
	// key. It indicates a bug, not bad input.
	ErrSignatureGeneration = errors.New("no recovery id matches the signing key")
)

// Signature is a compact recoverable signature. The header byte is
// 27 + recovery id, plus 4 when the signer's key is compressed.
type Signature [SignatureSize]byte

// ParseSignature checks the layout of b without touching the curve: header
// in 27..34, r and s in [1, n-1] and s in the lower half of the order.
func ParseSignature(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureSize {
		return sig, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SignatureSize, len(b))
	}
	copy(sig[:], b)

	if h := sig[0]; h < compactSigMagicOffset || h > compactSigMagicOffset+compactSigCompPubKey+maxRecoveryID {
		return sig, fmt.Errorf("%w: header byte %d out of range", ErrInvalidSignature, h)
	}
	if !isValidScalar(sig[1:33]) {
		return sig, fmt.Errorf("%w: r out of range", ErrInvalidSignature)
	}
	if !isValidScalar(sig[33:65]) {
		return sig, fmt.Errorf("%w: s out of range", ErrInvalidSignature)
	}
	if !sig.IsCanonical() {
		return sig, fmt.Errorf("%w: s is not in low-S form", ErrInvalidSignature)
	}
	return sig, nil
}

// RecoveryID returns which of the four candidate keys the signature commits to.
func (sig Signature) RecoveryID() byte {
	return (sig[0] - compactSigMagicOffset) & maxRecoveryID
}

// Compressed reports whether the header marks the signer's key as compressed.
func (sig Signature) Compressed() bool {
	return sig[0]-compactSigMagicOffset >= compactSigCompPubKey
}

// IsCanonical reports whether s <= n/2.
func (sig Signature) IsCanonical() bool {
	var s secp256k1.ModNScalar
	s.SetByteSlice(sig[33:65])
	return !s.IsOverHalfOrder()
}

func (sig Signature) Bytes() []byte {
	return sig[:]
}

// Sign creates a deterministic (RFC 6979) ECDSA signature of a 32 byte
// digest. The returned signature is header ‖ r ‖ s in low-S form, with the
// header selecting the recovery id that reproduces the signer's key.
func (privKey PrivKey) Sign(digest []byte) ([]byte, error) {
	if len(digest) != DigestSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidDigest, DigestSize, len(digest))
	}
	if err := privKey.Validate(); err != nil {
		return nil, err
	}

	priv, pub := secp256k1.PrivKeyFromBytes(privKey)
	defer priv.Zero()

	sig, err := ecdsa.SignCompact(priv, digest, true)
	if err != nil {
		return nil, err
	}

	recID := (sig[0] - compactSigMagicOffset - compactSigCompPubKey) & maxRecoveryID
	var s secp256k1.ModNScalar
	s.SetByteSlice(sig[33:65])
	if s.IsOverHalfOrder() {
		s.Negate()
		s.PutBytesUnchecked(sig[33:65])
		recID ^= 1
	}

	want := pub.SerializeCompressed()
	for i := byte(0); i <= maxRecoveryID; i++ {
		id := (recID + i) & maxRecoveryID
		sig[0] = compactSigMagicOffset + compactSigCompPubKey + id
		recovered, _, err := ecdsa.RecoverCompact(sig, digest)
		if err != nil {
			continue
		}
		if subtle.ConstantTimeCompare(recovered.SerializeCompressed(), want) == 1 {
			return sig, nil
		}
	}
	return nil, ErrSignatureGeneration
}

// VerifySignature recovers the signer of digest from sig and compares it to
// pubKey. Malformed input, high-S signatures, uncompressed headers (27..30)
// and mismatches all yield false, so each (r, s) has one accepted encoding.
func (pubKey PubKey) VerifySignature(digest []byte, sig []byte) bool {
	if len(digest) != DigestSize || len(pubKey) != PubKeySize {
		return false
	}
	if len(sig) != SignatureSize || sig[0] < compactSigMagicOffset+compactSigCompPubKey {
		return false
	}
	recovered, err := RecoverPubKey(digest, sig)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(recovered, pubKey) == 1
}

// RecoverPubKey returns the compressed key that produced sig over digest.
func RecoverPubKey(digest []byte, sig []byte) (PubKey, error) {
	if len(digest) != DigestSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidDigest, DigestSize, len(digest))
	}
	parsed, err := ParseSignature(sig)
	if err != nil {
		return nil, err
	}
	pub, _, err := ecdsa.RecoverCompact(parsed[:], digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return PubKey(pub.SerializeCompressed()), nil
}
