package secp256k1

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"github.com/sophiatx/alexandria/crypto"
)

// SuggestedBrainKeyWords is the length of phrases returned by SuggestBrainKey.
const SuggestedBrainKeyWords = 18

const suggestedBrainKeyEntropy = SuggestedBrainKeyWords / 3 * 32 // bits

// ErrEmptyBrainKey is returned for phrases that normalize to nothing.
var ErrEmptyBrainKey = errors.New("brain key is empty")

// NormalizeBrainKey trims the phrase, collapses every run of whitespace into
// one space and upper-cases the result.
func NormalizeBrainKey(phrase string) string {
	return strings.ToUpper(strings.Join(strings.Fields(phrase), " "))
}

// GenPrivKeyFromBrainKey derives the primary key of a brain key phrase:
// sha256(sha512(normalized + " 0")).
func GenPrivKeyFromBrainKey(phrase string) (PrivKey, error) {
	return GenPrivKeyFromBrainKeySequence(phrase, 0)
}

// GenPrivKeyFromBrainKeySequence derives the key at position seq, letting one
// phrase back several accounts.
func GenPrivKeyFromBrainKeySequence(phrase string, seq uint32) (PrivKey, error) {
	normalized := NormalizeBrainKey(phrase)
	if normalized == "" {
		return nil, ErrEmptyBrainKey
	}

	input := []byte(normalized + " " + strconv.FormatUint(uint64(seq), 10))
	defer crypto.Zero(input)
	inner := crypto.Sha512(input)
	defer crypto.Zero(inner)

	privKey := PrivKey(crypto.Sha256(inner))
	if err := privKey.Validate(); err != nil {
		privKey.Zero()
		return nil, fmt.Errorf("brain key sequence %d: %w", seq, err)
	}
	return privKey, nil
}

// SuggestBrainKey draws 192 bits from rand and returns them as an upper-case
// phrase of 18 words from the BIP-39 English list.
func SuggestBrainKey(rand io.Reader) (string, error) {
	entropy := make([]byte, suggestedBrainKeyEntropy/8)
	defer crypto.Zero(entropy)
	if err := crypto.ReadFull(rand, entropy); err != nil {
		return "", err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", err
	}
	return NormalizeBrainKey(mnemonic), nil
}
