package memo

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophiatx/alexandria/crypto/base58"
	"github.com/sophiatx/alexandria/crypto/secp256k1"
)

func TestRoundTrip(t *testing.T) {
	alice := secp256k1.GenKeyPair()
	bob := secp256k1.GenKeyPair()

	for _, plaintext := range []string{"testabc", "", "ü∑ unicode ✓", strings.Repeat("x", 15), strings.Repeat("y", 16), strings.Repeat("z", 1000)} {
		enc, err := Encrypt(plaintext, alice.PrivKey, bob.PubKey, rand.Reader)
		require.NoError(t, err)

		// Recipient opens with its private key and the sender's public key.
		dec, err := Decrypt(enc, bob.PrivKey, alice.PubKey)
		require.NoError(t, err)
		assert.Equal(t, plaintext, dec)

		// ECDH is symmetric, so the sender can read its own memo.
		dec, err = Decrypt(enc, alice.PrivKey, bob.PubKey)
		require.NoError(t, err)
		assert.Equal(t, plaintext, dec)
	}
}

func TestNonceMakesMemosDistinct(t *testing.T) {
	alice := secp256k1.GenKeyPair()
	bob := secp256k1.GenKeyPair()

	m1, err := Encrypt("same", alice.PrivKey, bob.PubKey, rand.Reader)
	require.NoError(t, err)
	m2, err := Encrypt("same", alice.PrivKey, bob.PubKey, rand.Reader)
	require.NoError(t, err)
	assert.NotEqual(t, m1, m2)
}

func TestDeterministicWithFixedNonce(t *testing.T) {
	alice := secp256k1.GenKeyPair()
	bob := secp256k1.GenKeyPair()
	nonce := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	m1, err := Encrypt("testabc", alice.PrivKey, bob.PubKey, bytes.NewReader(nonce))
	require.NoError(t, err)
	m2, err := Encrypt("testabc", alice.PrivKey, bob.PubKey, bytes.NewReader(nonce))
	require.NoError(t, err)
	assert.Equal(t, m1, m2)

	parsed, err := Parse(m1)
	require.NoError(t, err)
	assert.Equal(t, binary.LittleEndian.Uint64(nonce), parsed.Nonce)
	// uvarint(7) ‖ "testabc" fits in one block.
	assert.Len(t, parsed.Ciphertext, 16)
	assert.Equal(t, m1, parsed.String())
}

func TestCrossKeyFailure(t *testing.T) {
	alice := secp256k1.GenKeyPair()
	bob := secp256k1.GenKeyPair()
	eve := secp256k1.GenKeyPair()

	enc, err := Encrypt("testabc", alice.PrivKey, bob.PubKey, rand.Reader)
	require.NoError(t, err)

	testCases := []struct {
		name string
		priv secp256k1.PrivKey
		pub  secp256k1.PubKey
	}{
		{"wrong recipient", eve.PrivKey, alice.PubKey},
		{"wrong sender", bob.PrivKey, eve.PubKey},
		{"both wrong", eve.PrivKey, eve.PubKey},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dec, err := Decrypt(enc, tc.priv, tc.pub)
			assert.ErrorIs(t, err, ErrDecryption)
			assert.Empty(t, dec)
		})
	}
}

func TestTamperedMemo(t *testing.T) {
	alice := secp256k1.GenKeyPair()
	bob := secp256k1.GenKeyPair()

	enc, err := Encrypt("testabc", alice.PrivKey, bob.PubKey, rand.Reader)
	require.NoError(t, err)
	m, err := Parse(enc)
	require.NoError(t, err)

	nonce := m
	nonce.Nonce++
	_, err = Decrypt(nonce.String(), bob.PrivKey, alice.PubKey)
	assert.ErrorIs(t, err, ErrDecryption)

	check := m
	check.Check ^= 1
	_, err = Decrypt(check.String(), bob.PrivKey, alice.PubKey)
	assert.ErrorIs(t, err, ErrDecryption)

	// With two blocks, flipping the last byte of the first ciphertext block
	// flips the last plaintext byte, turning the 0x0f padding into 0xf0.
	long, err := Encrypt(strings.Repeat("y", 16), alice.PrivKey, bob.PubKey, rand.Reader)
	require.NoError(t, err)
	body, err := Parse(long)
	require.NoError(t, err)
	require.Len(t, body.Ciphertext, 32)
	body.Ciphertext[15] ^= 0xff
	_, err = Decrypt(body.String(), bob.PrivKey, alice.PubKey)
	assert.ErrorIs(t, err, ErrDecryption)

	truncated := m
	truncated.Ciphertext = m.Ciphertext[:8]
	_, err = Decrypt(truncated.String(), bob.PrivKey, alice.PubKey)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestMalformedText(t *testing.T) {
	bob := secp256k1.GenKeyPair()
	alice := secp256k1.GenKeyPair()

	for _, s := range []string{"", "1", base58.Encode([]byte("short")), "0OIl"} {
		_, err := Decrypt(s, bob.PrivKey, alice.PubKey)
		assert.ErrorIs(t, err, ErrDecryption, s)
	}

	_, err := Decrypt("0OIl", bob.PrivKey, alice.PubKey)
	assert.ErrorIs(t, err, base58.ErrInvalidEncoding)

	raw := Encrypted{Nonce: 1, Check: 2, Ciphertext: make([]byte, 16)}.Marshal()
	raw = append(raw, 0) // length prefix no longer matches
	_, err = Unmarshal(raw)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestInvalidKeys(t *testing.T) {
	alice := secp256k1.GenKeyPair()

	_, err := Encrypt("x", make([]byte, 32), alice.PubKey, rand.Reader)
	assert.ErrorIs(t, err, secp256k1.ErrInvalidPrivKey)

	_, err = Encrypt("x", alice.PrivKey, alice.PubKey[:20], rand.Reader)
	assert.ErrorIs(t, err, secp256k1.ErrInvalidPubKey)
}

func TestTooLarge(t *testing.T) {
	alice := secp256k1.GenKeyPair()
	bob := secp256k1.GenKeyPair()

	_, err := Encrypt(strings.Repeat("a", MaxPlaintextSize+1), alice.PrivKey, bob.PubKey, rand.Reader)
	assert.ErrorIs(t, err, ErrMemoTooLarge)

	enc, err := Encrypt(strings.Repeat("a", MaxPlaintextSize), alice.PrivKey, bob.PubKey, rand.Reader)
	require.NoError(t, err)
	dec, err := Decrypt(enc, bob.PrivKey, alice.PubKey)
	require.NoError(t, err)
	assert.Len(t, dec, MaxPlaintextSize)
}

func TestNonceReadFailure(t *testing.T) {
	alice := secp256k1.GenKeyPair()
	_, err := Encrypt("x", alice.PrivKey, alice.PubKey, bytes.NewReader([]byte{1, 2}))
	assert.Error(t, err)
}
