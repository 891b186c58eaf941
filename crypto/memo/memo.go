// Package memo encrypts short messages between two key holders.
//
// Sender and recipient derive the same secret with ECDH. Every memo mixes a
// fresh 64-bit nonce into that secret, so the AES-256-CBC key and IV are
// never reused. The encoded memo is
//
//	base58(nonce ‖ check ‖ uvarint(len(ciphertext)) ‖ ciphertext)
//
// where nonce and check are little-endian uint64 and check is the first eight
// bytes of sha256 of the derived key. A wrong key pair is detected through
// check before any decryption takes place.
package memo

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	btcec "github.com/btcsuite/btcd/btcec/v2"

	"github.com/sophiatx/alexandria/crypto"
	"github.com/sophiatx/alexandria/crypto/base58"
	"github.com/sophiatx/alexandria/crypto/secp256k1"
)

// MaxPlaintextSize bounds the memo text accepted by Encrypt.
const MaxPlaintextSize = 64 << 10

const (
	nonceSize    = 8
	checkSize    = 8
	aesKeySize   = 32
	maxEncrypted = MaxPlaintextSize + binary.MaxVarintLen64 + aes.BlockSize
)

var (
	// ErrDecryption covers every way a memo can fail to open: wrong keys,
	// corrupted text, bad padding. No partial plaintext is ever returned.
	ErrDecryption = errors.New("memo decryption failed")
	// ErrMemoTooLarge is returned for plaintext above MaxPlaintextSize.
	ErrMemoTooLarge = errors.New("memo too large")
)

// Encrypted is the decoded form of a memo.
type Encrypted struct {
	Nonce      uint64
	Check      uint64
	Ciphertext []byte
}

// Marshal packs the memo into its binary layout.
func (m Encrypted) Marshal() []byte {
	buf := make([]byte, 0, nonceSize+checkSize+binary.MaxVarintLen64+len(m.Ciphertext))
	buf = binary.LittleEndian.AppendUint64(buf, m.Nonce)
	buf = binary.LittleEndian.AppendUint64(buf, m.Check)
	buf = binary.AppendUvarint(buf, uint64(len(m.Ciphertext)))
	return append(buf, m.Ciphertext...)
}

// String returns the base58 text form.
func (m Encrypted) String() string {
	return base58.Encode(m.Marshal())
}

// Unmarshal parses the binary layout produced by Marshal.
func Unmarshal(b []byte) (Encrypted, error) {
	var m Encrypted
	if len(b) < nonceSize+checkSize+1 {
		return m, fmt.Errorf("%w: memo is %d bytes", ErrDecryption, len(b))
	}
	m.Nonce = binary.LittleEndian.Uint64(b[:nonceSize])
	m.Check = binary.LittleEndian.Uint64(b[nonceSize : nonceSize+checkSize])

	rest := b[nonceSize+checkSize:]
	n, read := binary.Uvarint(rest)
	if read <= 0 {
		return m, fmt.Errorf("%w: bad ciphertext length", ErrDecryption)
	}
	rest = rest[read:]
	if n != uint64(len(rest)) {
		return m, fmt.Errorf("%w: ciphertext length %d does not match %d remaining bytes", ErrDecryption, n, len(rest))
	}
	if n == 0 || n%aes.BlockSize != 0 || n > maxEncrypted {
		return m, fmt.Errorf("%w: ciphertext length %d", ErrDecryption, n)
	}
	m.Ciphertext = bytes.Clone(rest)
	return m, nil
}

// Parse decodes the base58 text form.
func Parse(s string) (Encrypted, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Encrypted{}, fmt.Errorf("%w: %w", ErrDecryption, err)
	}
	return Unmarshal(raw)
}

// Encrypt seals plaintext from the holder of senderPriv to the holder of the
// private key behind recipientPub. The nonce is read from rand.
func Encrypt(plaintext string, senderPriv secp256k1.PrivKey, recipientPub secp256k1.PubKey, rand io.Reader) (string, error) {
	if len(plaintext) > MaxPlaintextSize {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrMemoTooLarge, len(plaintext), MaxPlaintextSize)
	}

	var nonceBytes [nonceSize]byte
	if err := crypto.ReadFull(rand, nonceBytes[:]); err != nil {
		return "", err
	}
	nonce := binary.LittleEndian.Uint64(nonceBytes[:])

	key, err := memoKey(senderPriv, recipientPub, nonce)
	if err != nil {
		return "", err
	}
	defer crypto.Zero(key)

	body := make([]byte, 0, binary.MaxVarintLen64+len(plaintext)+aes.BlockSize)
	body = binary.AppendUvarint(body, uint64(len(plaintext)))
	body = append(body, plaintext...)
	body = pad(body)
	defer crypto.Zero(body)

	block, err := aes.NewCipher(key[:aesKeySize])
	if err != nil {
		return "", err
	}
	ciphertext := make([]byte, len(body))
	cipher.NewCBCEncrypter(block, key[aesKeySize:aesKeySize+aes.BlockSize]).CryptBlocks(ciphertext, body)

	return Encrypted{
		Nonce:      nonce,
		Check:      checksum(key),
		Ciphertext: ciphertext,
	}.String(), nil
}

// Decrypt opens a memo produced by Encrypt. recipientPriv and senderPub must
// be the counterparts of the keys used to seal it.
func Decrypt(memo string, recipientPriv secp256k1.PrivKey, senderPub secp256k1.PubKey) (string, error) {
	m, err := Parse(memo)
	if err != nil {
		return "", err
	}

	key, err := memoKey(recipientPriv, senderPub, m.Nonce)
	if err != nil {
		return "", err
	}
	defer crypto.Zero(key)

	var want, got [checkSize]byte
	binary.LittleEndian.PutUint64(want[:], checksum(key))
	binary.LittleEndian.PutUint64(got[:], m.Check)
	if subtle.ConstantTimeCompare(want[:], got[:]) != 1 {
		return "", fmt.Errorf("%w: checksum mismatch", ErrDecryption)
	}

	block, err := aes.NewCipher(key[:aesKeySize])
	if err != nil {
		return "", err
	}
	body := make([]byte, len(m.Ciphertext))
	defer crypto.Zero(body)
	cipher.NewCBCDecrypter(block, key[aesKeySize:aesKeySize+aes.BlockSize]).CryptBlocks(body, m.Ciphertext)

	body, err = unpad(body)
	if err != nil {
		return "", err
	}
	n, read := binary.Uvarint(body)
	if read <= 0 || n != uint64(len(body)-read) {
		return "", fmt.Errorf("%w: inner length mismatch", ErrDecryption)
	}
	return string(body[read:]), nil
}

// memoKey returns sha512(nonce ‖ sha512(ECDH x)). The first 32 bytes are the
// AES key and the next 16 the IV.
func memoKey(priv secp256k1.PrivKey, pub secp256k1.PubKey, nonce uint64) ([]byte, error) {
	if err := priv.Validate(); err != nil {
		return nil, err
	}
	if _, err := secp256k1.PubKeyFromBytes(pub); err != nil {
		return nil, err
	}
	point, err := btcec.ParsePubKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", secp256k1.ErrInvalidPubKey, err)
	}
	scalar, _ := btcec.PrivKeyFromBytes(priv)
	defer scalar.Zero()

	x := btcec.GenerateSharedSecret(scalar, point)
	defer crypto.Zero(x)
	shared := crypto.Sha512(x)
	defer crypto.Zero(shared)

	input := make([]byte, 0, nonceSize+len(shared))
	input = binary.LittleEndian.AppendUint64(input, nonce)
	input = append(input, shared...)
	defer crypto.Zero(input)

	return crypto.Sha512(input), nil
}

func checksum(key []byte) uint64 {
	sum := crypto.Sha256(key)
	defer crypto.Zero(sum)
	return binary.LittleEndian.Uint64(sum[:checkSize])
}

// pad applies PKCS#7 to a whole number of AES blocks.
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: bad block length", ErrDecryption)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize {
		return nil, fmt.Errorf("%w: bad padding", ErrDecryption)
	}
	var bad byte
	for _, c := range b[len(b)-n:] {
		bad |= c ^ byte(n)
	}
	if bad != 0 {
		return nil, fmt.Errorf("%w: bad padding", ErrDecryption)
	}
	return b[:len(b)-n], nil
}
