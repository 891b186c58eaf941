package wif

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophiatx/alexandria/crypto/base58"
	"github.com/sophiatx/alexandria/crypto/secp256k1"
)

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

func keyOne() secp256k1.PrivKey {
	k := make([]byte, 32)
	k[31] = 1
	return k
}

func TestKnownVectors(t *testing.T) {
	assert.Equal(t, "5HpHagT65TZzG1PH3CSu63k8DbpvD8s5ip4nEB3kEsreAnchuDf", Encode(keyOne(), false))
	assert.Equal(t, "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn", Encode(keyOne(), true))

	key, compressed, err := Decode("5HpHagT65TZzG1PH3CSu63k8DbpvD8s5ip4nEB3kEsreAnchuDf")
	require.NoError(t, err)
	assert.False(t, compressed)
	assert.Equal(t, keyOne(), key)

	key, compressed, err = Decode("KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn")
	require.NoError(t, err)
	assert.True(t, compressed)
	assert.Equal(t, keyOne(), key)
}

func TestRoundTrip(t *testing.T) {
	for i := 0; i < 20; i++ {
		key := secp256k1.GenPrivKey()
		for _, compressed := range []bool{false, true} {
			decoded, c, err := Decode(Encode(key, compressed))
			require.NoError(t, err)
			assert.Equal(t, compressed, c)
			assert.True(t, key.Equals(decoded))
		}
	}
}

func TestSingleCharacterCorruption(t *testing.T) {
	s := Encode(secp256k1.GenPrivKey(), false)

	for i := 0; i < len(s); i++ {
		pos := strings.IndexByte(alphabet, s[i])
		require.GreaterOrEqual(t, pos, 0)
		corrupt := s[:i] + string(alphabet[(pos+1)%len(alphabet)]) + s[i+1:]

		_, _, err := Decode(corrupt)
		assert.ErrorIs(t, err, base58.ErrChecksumMismatch, "position %d", i)
	}
}

func TestInvalid(t *testing.T) {
	testCases := []struct {
		name string
		in   string
	}{
		{"wrong version", "5Km2kuu7vtFDPpxywn4u3NLu8iSdrqhxWT8tUKjeEXs2fPgNpLf"},
		{"wrong suffix", "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sfZr2ym"},
		{"zero key", "5HpHagT65TZzG1PH3CSu63k8DbpvD8s5ip4nEB3kEsreAbuatmU"},
		{"short key", "yNb7j1viLcZunrTHozyfJPTZJrprRSPpY485Lwzq1CFSBo1up"},
		{"not base58", "0OIl"},
		{"empty", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(tc.in)
			assert.ErrorIs(t, err, ErrInvalidWif)
			assert.NotErrorIs(t, err, base58.ErrChecksumMismatch)
		})
	}
}
