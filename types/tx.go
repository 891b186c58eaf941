package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// SignaturesField is the transaction member that collects signatures.
const SignaturesField = "signatures"

// ErrMalformedTransaction is returned when a transaction is not a JSON object
// with a single array-valued signatures member.
var ErrMalformedTransaction = errors.New("malformed transaction")

// Tx is a transaction in its JSON text form.
type Tx []byte

// String returns the transaction text.
func (tx Tx) String() string {
	return string(tx)
}

// AddSignature appends the lower-case hex of sig to the signatures array of
// tx. Everything outside that array is copied byte for byte, so member order
// and formatting survive.
func AddSignature(tx Tx, sig []byte) (Tx, error) {
	if len(sig) == 0 {
		return nil, fmt.Errorf("%w: empty signature", ErrMalformedTransaction)
	}
	loc, err := locateSignatures(tx)
	if err != nil {
		return nil, err
	}

	entry, err := json.Marshal(hex.EncodeToString(sig))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(tx)+len(entry)+1)
	out = append(out, tx[:loc.closing]...)
	if loc.count > 0 {
		out = append(out, ',')
	}
	out = append(out, entry...)
	out = append(out, tx[loc.closing:]...)
	return out, nil
}

// Signatures returns the decoded entries of the signatures array.
func Signatures(tx Tx) ([][]byte, error) {
	loc, err := locateSignatures(tx)
	if err != nil {
		return nil, err
	}

	var entries []string
	if err := json.Unmarshal(tx[loc.opening:loc.closing+1], &entries); err != nil {
		return nil, fmt.Errorf("%w: signatures must be strings: %v", ErrMalformedTransaction, err)
	}
	sigs := make([][]byte, 0, len(entries))
	for i, e := range entries {
		sig, err := hex.DecodeString(e)
		if err != nil {
			return nil, fmt.Errorf("%w: signature %d is not hex: %v", ErrMalformedTransaction, i, err)
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

type signaturesLocation struct {
	opening int // offset of '['
	closing int // offset of ']'
	count   int
}

// locateSignatures walks the top-level object of tx and returns where its
// signatures array begins and ends.
func locateSignatures(tx Tx) (signaturesLocation, error) {
	var loc signaturesLocation
	if !json.Valid(tx) {
		return loc, fmt.Errorf("%w: not valid JSON", ErrMalformedTransaction)
	}

	dec := json.NewDecoder(bytes.NewReader(tx))
	tok, err := dec.Token()
	if err != nil {
		return loc, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return loc, fmt.Errorf("%w: not a JSON object", ErrMalformedTransaction)
	}

	found := false
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return loc, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
		}
		key, _ := keyTok.(string)
		if key != SignaturesField {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return loc, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
			}
			continue
		}
		if found {
			return loc, fmt.Errorf("%w: duplicate %q member", ErrMalformedTransaction, SignaturesField)
		}
		found = true

		// The offset before the '[' token may still include whitespace and
		// the colon, so the opening bracket is found by scanning forward.
		start := int(dec.InputOffset())
		tok, err := dec.Token()
		if err != nil {
			return loc, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			return loc, fmt.Errorf("%w: %q is not an array", ErrMalformedTransaction, SignaturesField)
		}
		loc.opening = start + bytes.IndexByte(tx[start:], '[')

		loc.count = 0
		for dec.More() {
			var elem json.RawMessage
			if err := dec.Decode(&elem); err != nil {
				return loc, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
			}
			loc.count++
		}
		if _, err := dec.Token(); err != nil { // ']'
			return loc, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
		}
		loc.closing = int(dec.InputOffset()) - 1
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) { // '}'
		return loc, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
	}

	if !found {
		return loc, fmt.Errorf("%w: missing %q member", ErrMalformedTransaction, SignaturesField)
	}
	return loc, nil
}
