package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sig65(b byte) []byte {
	return bytes.Repeat([]byte{b}, 65)
}

func TestAddSignature(t *testing.T) {
	sig := sig65(0xab)
	sigHex := hex.EncodeToString(sig)

	testCases := []struct {
		name string
		in   string
		out  string
	}{
		{
			"empty list",
			`{"ref_block_num":1,"signatures":[],"operations":[]}`,
			`{"ref_block_num":1,"signatures":["` + sigHex + `"],"operations":[]}`,
		},
		{
			"existing signature",
			`{"signatures":["00"],"expiration":"2018-01-01T00:00:00"}`,
			`{"signatures":["00","` + sigHex + `"],"expiration":"2018-01-01T00:00:00"}`,
		},
		{
			"whitespace preserved",
			"{ \"operations\" : [ {\"signatures\": 5} ],\n  \"signatures\" : [ \"00\" ]\n}",
			"{ \"operations\" : [ {\"signatures\": 5} ],\n  \"signatures\" : [ \"00\" ,\"" + sigHex + "\"]\n}",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := AddSignature(Tx(tc.in), sig)
			require.NoError(t, err)
			assert.Equal(t, tc.out, string(out))
			assert.True(t, json.Valid(out))
		})
	}
}

func TestAddSignatureMalformed(t *testing.T) {
	testCases := []struct {
		name string
		in   string
	}{
		{"not json", `signatures: []`},
		{"array", `[{"signatures":[]}]`},
		{"missing member", `{"operations":[]}`},
		{"nested only", `{"operations":[{"signatures":[]}]}`},
		{"not an array", `{"signatures":"00"}`},
		{"null", `{"signatures":null}`},
		{"duplicate", `{"signatures":[],"signatures":[]}`},
		{"trailing garbage", `{"signatures":[]} x`},
		{"empty", ``},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AddSignature(Tx(tc.in), sig65(1))
			assert.ErrorIs(t, err, ErrMalformedTransaction)
		})
	}

	_, err := AddSignature(Tx(`{"signatures":[]}`), nil)
	assert.ErrorIs(t, err, ErrMalformedTransaction)
}

func TestSignatures(t *testing.T) {
	tx := Tx(`{"signatures":[]}`)

	sigs, err := Signatures(tx)
	require.NoError(t, err)
	assert.Empty(t, sigs)

	tx, err = AddSignature(tx, sig65(1))
	require.NoError(t, err)
	tx, err = AddSignature(tx, sig65(2))
	require.NoError(t, err)

	sigs, err = Signatures(tx)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{sig65(1), sig65(2)}, sigs)

	_, err = Signatures(Tx(`{"signatures":["zz"]}`))
	assert.ErrorIs(t, err, ErrMalformedTransaction)

	_, err = Signatures(Tx(`{"signatures":[1]}`))
	assert.ErrorIs(t, err, ErrMalformedTransaction)
}

func TestChainID(t *testing.T) {
	zero, err := ParseChainID("0000000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	s := "DEADBEEF00000000000000000000000000000000000000000000000000000001"
	id, err := ParseChainID(s)
	require.NoError(t, err)
	assert.False(t, id.IsZero())
	assert.Equal(t, "deadbeef00000000000000000000000000000000000000000000000000000001", id.String())

	fromBytes, err := ChainIDFromBytes(id.Bytes())
	require.NoError(t, err)
	assert.Equal(t, id, fromBytes)

	for _, bad := range []string{"", "00", s + "00", "zz" + s[2:]} {
		_, err := ParseChainID(bad)
		assert.ErrorIs(t, err, ErrInvalidChainID, bad)
	}
	_, err = ChainIDFromBytes(make([]byte, 31))
	assert.ErrorIs(t, err, ErrInvalidChainID)
}

func TestChainIDJSON(t *testing.T) {
	var id ChainID
	id[0] = 0x01

	bz, err := json.Marshal(struct {
		ChainID ChainID `json:"chain_id"`
	}{id})
	require.NoError(t, err)
	assert.Equal(t, `{"chain_id":"0100000000000000000000000000000000000000000000000000000000000000"}`, string(bz))

	var decoded struct {
		ChainID ChainID `json:"chain_id"`
	}
	require.NoError(t, json.Unmarshal(bz, &decoded))
	assert.Equal(t, id, decoded.ChainID)

	assert.Error(t, json.Unmarshal([]byte(`{"chain_id":"01"}`), &decoded))
}
