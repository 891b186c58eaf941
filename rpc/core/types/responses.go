package coretypes

import (
	"encoding/json"
)

// Key pair, private key as WIF.
type ResultKeyPair struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
}

// A freshly suggested brain key and the key it derives.
type ResultBrainKey struct {
	BrainKey   string `json:"brain_priv_key"`
	PrivateKey string `json:"wif_priv_key"`
	PublicKey  string `json:"pub_key"`
}

type ResultPublicKey struct {
	PublicKey string `json:"public_key"`
}

// Hex encoded transaction digest.
type ResultDigest struct {
	Digest string `json:"digest"`
}

// Hex encoded 65 byte compact signature.
type ResultSignature struct {
	Signature string `json:"signature"`
}

type ResultVerify struct {
	Valid bool `json:"valid"`
}

// Signed transaction.
type ResultTransaction struct {
	Transaction json.RawMessage `json:"transaction"`
}

type ResultMemo struct {
	Memo string `json:"memo"`
}

type ResultBase58 struct {
	Base58 string `json:"base58"`
}

// Hex encoded bytes.
type ResultBytes struct {
	Data string `json:"data"`
}

// Info about the signing service.
type ResultStatus struct {
	Version       string `json:"version"`
	ChainID       string `json:"chain_id"`
	AddressPrefix string `json:"address_prefix"`
}

// Empty results.
type (
	ResultHealth struct{}
)
