package base58

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	testCases := []struct {
		in  string // hex
		out string
	}{
		{"", ""},
		{"00", "1"},
		{"00000102", "115T"},
		{"68656c6c6f20776f726c64", "StV1DL6CwTryKyV"},
		{"0000287fb4cd", "11233QC4"},
	}

	for _, tc := range testCases {
		in, err := hex.DecodeString(tc.in)
		require.NoError(t, err)

		assert.Equal(t, tc.out, Encode(in), tc.in)

		decoded, err := Decode(tc.out)
		require.NoError(t, err, tc.out)
		assert.Equal(t, in, decoded, tc.out)
	}
}

func TestRoundTripLeadingZeros(t *testing.T) {
	for zeros := 0; zeros < 5; zeros++ {
		in := append(bytes.Repeat([]byte{0}, zeros), 0xff, 0x00, 0x7a)
		enc := Encode(in)
		assert.Equal(t, zeros, len(enc)-len(bytesTrimOnes(enc)))

		out, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func bytesTrimOnes(s string) string {
	i := 0
	for i < len(s) && s[i] == '1' {
		i++
	}
	return s[i:]
}

func TestDecodeInvalidCharacters(t *testing.T) {
	for _, s := range []string{"0", "O", "I", "l", "abc+", "3BM1 u5j7"} {
		_, err := Decode(s)
		assert.ErrorIs(t, err, ErrInvalidEncoding, s)
	}
}

func TestChecked(t *testing.T) {
	enc := EncodeChecked([]byte("sophiatx"))
	assert.Equal(t, "3BM1u5j7Q7nNdu3VZ", enc)

	payload, err := DecodeChecked(enc)
	require.NoError(t, err)
	assert.Equal(t, []byte("sophiatx"), payload)

	empty, err := DecodeChecked(EncodeChecked(nil))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCheckedCorruption(t *testing.T) {
	enc := EncodeChecked([]byte("sophiatx"))

	// Swap the last character for another alphabet character.
	corrupt := []byte(enc)
	if corrupt[len(corrupt)-1] == 'a' {
		corrupt[len(corrupt)-1] = 'b'
	} else {
		corrupt[len(corrupt)-1] = 'a'
	}
	_, err := DecodeChecked(string(corrupt))
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = DecodeChecked("")
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = DecodeChecked(Encode([]byte{1, 2, 3}))
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = DecodeChecked("0OIl")
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}
