package types

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// ChainIDSize is the length of a chain id.
const ChainIDSize = 32

// ErrInvalidChainID is returned for chain ids that are not 64 hex digits.
var ErrInvalidChainID = errors.New("invalid chain id")

// ChainID distinguishes networks so a signature made for one chain does not
// verify on another. The zero value is a valid id.
type ChainID [ChainIDSize]byte

// ParseChainID decodes 64 hex digits, in either case.
func ParseChainID(s string) (ChainID, error) {
	var id ChainID
	if len(s) != 2*ChainIDSize {
		return id, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidChainID, 2*ChainIDSize, len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return ChainID{}, fmt.Errorf("%w: %v", ErrInvalidChainID, err)
	}
	return id, nil
}

// ChainIDFromBytes copies a 32 byte id.
func ChainIDFromBytes(b []byte) (ChainID, error) {
	var id ChainID
	if len(b) != ChainIDSize {
		return id, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidChainID, ChainIDSize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id ChainID) String() string {
	return hex.EncodeToString(id[:])
}

func (id ChainID) Bytes() []byte {
	return id[:]
}

func (id ChainID) IsZero() bool {
	return id == ChainID{}
}

// MarshalText encodes the id as lower-case hex.
func (id ChainID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText accepts the output of MarshalText.
func (id *ChainID) UnmarshalText(text []byte) error {
	parsed, err := ParseChainID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
