// Package armor wraps binary key material in OpenPGP-style ASCII armor so it
// can be stored in text files and copied between terminals.
package armor

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/openpgp/armor" //nolint: staticcheck
)

// ErrUnexpectedBlockType is returned by DecodeBlock for a well-formed block
// of another type.
var ErrUnexpectedBlockType = errors.New("armor: unexpected block type")

// EncodeError represents an error from calling [EncodeArmor].
type EncodeError struct{ Err error }

func (e *EncodeError) Error() string {
	return fmt.Sprintf("armor: could not encode ASCII armor: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError represents an error from calling [DecodeArmor].
type DecodeError struct{ Err error }

func (e *DecodeError) Error() string {
	return fmt.Sprintf("armor: could not decode ASCII armor: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeArmor returns data armored as blockType with the given headers.
func EncodeArmor(blockType string, headers map[string]string, data []byte) (string, error) {
	buf := new(bytes.Buffer)
	w, err := armor.Encode(buf, blockType, headers)
	if err != nil {
		return "", &EncodeError{Err: err}
	}
	if _, err = w.Write(data); err != nil {
		return "", &EncodeError{Err: err}
	}
	if err = w.Close(); err != nil {
		return "", &EncodeError{Err: err}
	}
	return buf.String(), nil
}

// DecodeArmor parses the first armored block in armorStr.
func DecodeArmor(armorStr string) (blockType string, headers map[string]string, data []byte, err error) {
	block, err := armor.Decode(bytes.NewBufferString(armorStr))
	if err != nil {
		return "", nil, nil, &DecodeError{Err: err}
	}
	data, err = io.ReadAll(block.Body)
	if err != nil {
		return "", nil, nil, &DecodeError{Err: err}
	}
	return block.Type, block.Header, data, nil
}

// DecodeBlock is DecodeArmor for callers that accept a single block type.
func DecodeBlock(armorStr, wantType string) (headers map[string]string, data []byte, err error) {
	blockType, headers, data, err := DecodeArmor(armorStr)
	if err != nil {
		return nil, nil, err
	}
	if blockType != wantType {
		return nil, nil, fmt.Errorf("%w: got %q, want %q", ErrUnexpectedBlockType, blockType, wantType)
	}
	return headers, data, nil
}
