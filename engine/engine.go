// Package engine is the byte-oriented surface of alexandria. Every operation
// takes and returns plain buffers, copies private keys into scoped buffers
// that are wiped on return, and reports failures as *Error with a Kind.
//
// An Engine must be initialized before use:
//
//	e := engine.New()
//	if err := e.Init(); err != nil {
//		return err
//	}
//	priv, err := e.GeneratePrivateKey()
package engine

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/sophiatx/alexandria/crypto"
	"github.com/sophiatx/alexandria/crypto/base58"
	"github.com/sophiatx/alexandria/crypto/memo"
	"github.com/sophiatx/alexandria/crypto/secp256k1"
	"github.com/sophiatx/alexandria/crypto/txhash"
	"github.com/sophiatx/alexandria/crypto/wif"
	"github.com/sophiatx/alexandria/libs/log"
	alexsync "github.com/sophiatx/alexandria/libs/sync"
	"github.com/sophiatx/alexandria/types"
)

// Engine holds configuration only. No key material survives a call.
type Engine struct {
	mtx         alexsync.RWMutex
	initialized bool

	rand          io.Reader
	logger        log.Logger
	pubKeyPrefix  string
	compressedWif bool
}

// Option sets a parameter for the engine.
type Option func(*Engine)

// WithRandom replaces the operating system CSPRNG. Readers other than
// crypto/rand.Reader are serialized with a mutex.
func WithRandom(r io.Reader) Option {
	return func(e *Engine) {
		if r == crand.Reader {
			e.rand = r
			return
		}
		e.rand = crypto.NewLockedReader(r)
	}
}

// WithLogger sets the logger. Only non-secret metadata is logged.
func WithLogger(l log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithPubKeyPrefix sets the prefix of public key strings.
func WithPubKeyPrefix(prefix string) Option {
	return func(e *Engine) { e.pubKeyPrefix = prefix }
}

// WithCompressedWif makes PrivateKeyToWif emit the compressed form.
func WithCompressedWif(compressed bool) Option {
	return func(e *Engine) { e.compressedWif = compressed }
}

// New returns an engine that still needs Init.
func New(opts ...Option) *Engine {
	e := &Engine{
		rand:         crypto.CReader(),
		logger:       log.NewNopLogger(),
		pubKeyPrefix: secp256k1.DefaultPubKeyPrefix,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init checks that the random source works and that a freshly generated key
// signs and verifies. It is safe to call more than once.
func (e *Engine) Init() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.initialized {
		return nil
	}
	if e.pubKeyPrefix == "" {
		return newError("init", errors.New("public key prefix must not be empty"))
	}

	privKey, err := secp256k1.GenPrivKeyFromReader(e.rand)
	if err != nil {
		return newError("init", fmt.Errorf("random source: %w", err))
	}
	defer privKey.Zero()

	digest := crypto.Sha256([]byte("alexandria self-check"))
	sig, err := privKey.Sign(digest)
	if err != nil {
		return newError("init", err)
	}
	if !privKey.PubKey().VerifySignature(digest, sig) {
		return newError("init", errors.New("curve self-check failed"))
	}

	e.initialized = true
	e.logger.Info("engine initialized", "pubkey_prefix", e.pubKeyPrefix, "compressed_wif", e.compressedWif)
	return nil
}

// IsInitialized reports whether Init has succeeded.
func (e *Engine) IsInitialized() bool {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.initialized
}

// PubKeyPrefix returns the prefix used for public key strings.
func (e *Engine) PubKeyPrefix() string {
	return e.pubKeyPrefix
}

func (e *Engine) checkInit(op string) error {
	if !e.IsInitialized() {
		return newError(op, ErrNotInitialized)
	}
	return nil
}

// withPrivKey copies raw into a scoped buffer, validates it and wipes it
// after fn returns.
func withPrivKey(raw []byte, fn func(secp256k1.PrivKey) error) error {
	privKey, err := secp256k1.PrivKeyFromBytes(raw)
	if err != nil {
		return err
	}
	defer privKey.Zero()
	return fn(privKey)
}

// GeneratePrivateKey returns 32 random bytes forming a valid scalar.
func (e *Engine) GeneratePrivateKey() ([]byte, error) {
	const op = "generate_private_key"
	if err := e.checkInit(op); err != nil {
		return nil, err
	}
	privKey, err := secp256k1.GenPrivKeyFromReader(e.rand)
	if err != nil {
		return nil, newError(op, err)
	}
	e.logger.Debug("generated private key")
	return privKey, nil
}

// GenerateKeyPair returns a fresh key pair.
func (e *Engine) GenerateKeyPair() (secp256k1.KeyPair, error) {
	const op = "generate_key_pair"
	privKey, err := e.GeneratePrivateKey()
	if err != nil {
		return secp256k1.KeyPair{}, err
	}
	kp, err := secp256k1.NewKeyPair(privKey)
	crypto.Zero(privKey)
	if err != nil {
		return secp256k1.KeyPair{}, newError(op, err)
	}
	return kp, nil
}

// DerivePrivateKeyFromBrainKey returns the primary key of a brain key phrase.
func (e *Engine) DerivePrivateKeyFromBrainKey(phrase string) ([]byte, error) {
	const op = "derive_private_key_from_brain_key"
	if err := e.checkInit(op); err != nil {
		return nil, err
	}
	privKey, err := secp256k1.GenPrivKeyFromBrainKey(phrase)
	if err != nil {
		return nil, newError(op, err)
	}
	return privKey, nil
}

// BrainKeyInfo is a suggested brain key together with the key it derives.
type BrainKeyInfo struct {
	BrainKey   string `json:"brain_priv_key"`
	WifPrivKey string `json:"wif_priv_key"`
	PubKey     string `json:"pub_key"`
}

// SuggestBrainKey draws a new 18 word phrase and derives its primary key.
func (e *Engine) SuggestBrainKey() (BrainKeyInfo, error) {
	const op = "suggest_brain_key"
	if err := e.checkInit(op); err != nil {
		return BrainKeyInfo{}, err
	}
	phrase, err := secp256k1.SuggestBrainKey(e.rand)
	if err != nil {
		return BrainKeyInfo{}, newError(op, err)
	}
	privKey, err := secp256k1.GenPrivKeyFromBrainKey(phrase)
	if err != nil {
		return BrainKeyInfo{}, newError(op, err)
	}
	defer privKey.Zero()

	return BrainKeyInfo{
		BrainKey:   phrase,
		WifPrivKey: wif.Encode(privKey, e.compressedWif),
		PubKey:     privKey.PubKey().Text(e.pubKeyPrefix),
	}, nil
}

// GetPublicKey returns the 33 byte compressed public key of privKey.
func (e *Engine) GetPublicKey(privKey []byte) ([]byte, error) {
	const op = "get_public_key"
	if err := e.checkInit(op); err != nil {
		return nil, err
	}
	var pubKey secp256k1.PubKey
	err := withPrivKey(privKey, func(k secp256k1.PrivKey) error {
		pubKey = k.PubKey()
		return nil
	})
	if err != nil {
		return nil, newError(op, err)
	}
	return pubKey, nil
}

// TransactionDigest returns H(chainID ‖ tx).
func (e *Engine) TransactionDigest(tx []byte, chainID []byte) ([]byte, error) {
	const op = "transaction_digest"
	if err := e.checkInit(op); err != nil {
		return nil, err
	}
	id, err := types.ChainIDFromBytes(chainID)
	if err != nil {
		return nil, newError(op, err)
	}
	digest := txhash.Sum(id, tx)
	e.logger.Debug("computed transaction digest", "digest", log.NewLazyHex(digest[:]), "tx_bytes", len(tx))
	return digest.Bytes(), nil
}

// Sign returns the 65 byte canonical recoverable signature of digest.
func (e *Engine) Sign(digest []byte, privKey []byte) ([]byte, error) {
	const op = "sign"
	if err := e.checkInit(op); err != nil {
		return nil, err
	}
	var sig []byte
	err := withPrivKey(privKey, func(k secp256k1.PrivKey) (err error) {
		sig, err = k.Sign(digest)
		return err
	})
	if err != nil {
		e.logger.Debug("sign failed", "err", err)
		return nil, newError(op, err)
	}
	e.logger.Debug("signed digest", "digest", log.NewLazyHex(digest))
	return sig, nil
}

// Verify reports whether sig is a canonical signature of digest by pubKey.
// Malformed input yields false; the only error is ErrNotInitialized.
func (e *Engine) Verify(digest []byte, pubKey []byte, sig []byte) (bool, error) {
	const op = "verify"
	if err := e.checkInit(op); err != nil {
		return false, err
	}
	return secp256k1.PubKey(pubKey).VerifySignature(digest, sig), nil
}

// EncryptMemo seals plaintext from the owner of privKey to the owner of
// pubKey.
func (e *Engine) EncryptMemo(plaintext string, privKey []byte, pubKey []byte) (string, error) {
	const op = "encrypt_memo"
	if err := e.checkInit(op); err != nil {
		return "", err
	}
	var out string
	err := withPrivKey(privKey, func(k secp256k1.PrivKey) (err error) {
		out, err = memo.Encrypt(plaintext, k, pubKey, e.rand)
		return err
	})
	if err != nil {
		return "", newError(op, err)
	}
	return out, nil
}

// DecryptMemo opens a memo addressed to the owner of privKey from the owner
// of pubKey.
func (e *Engine) DecryptMemo(encrypted string, privKey []byte, pubKey []byte) (string, error) {
	const op = "decrypt_memo"
	if err := e.checkInit(op); err != nil {
		return "", err
	}
	var out string
	err := withPrivKey(privKey, func(k secp256k1.PrivKey) (err error) {
		out, err = memo.Decrypt(encrypted, k, pubKey)
		return err
	})
	if err != nil {
		e.logger.Debug("memo decryption failed", "kind", classify(err))
		return "", newError(op, err)
	}
	return out, nil
}

// PrivateKeyToWif encodes privKey in Wallet Import Format.
func (e *Engine) PrivateKeyToWif(privKey []byte) (string, error) {
	const op = "private_key_to_wif"
	if err := e.checkInit(op); err != nil {
		return "", err
	}
	var out string
	err := withPrivKey(privKey, func(k secp256k1.PrivKey) error {
		out = wif.Encode(k, e.compressedWif)
		return nil
	})
	if err != nil {
		return "", newError(op, err)
	}
	return out, nil
}

// WifToPrivateKey decodes either WIF form.
func (e *Engine) WifToPrivateKey(s string) ([]byte, error) {
	const op = "wif_to_private_key"
	if err := e.checkInit(op); err != nil {
		return nil, err
	}
	privKey, _, err := wif.Decode(s)
	if err != nil {
		return nil, newError(op, err)
	}
	return privKey, nil
}

// PublicKeyToString returns the prefixed text form of pubKey.
func (e *Engine) PublicKeyToString(pubKey []byte) (string, error) {
	const op = "public_key_to_string"
	if err := e.checkInit(op); err != nil {
		return "", err
	}
	parsed, err := secp256k1.PubKeyFromBytes(pubKey)
	if err != nil {
		return "", newError(op, err)
	}
	return parsed.Text(e.pubKeyPrefix), nil
}

// PublicKeyFromString parses the prefixed text form of a public key.
func (e *Engine) PublicKeyFromString(s string) ([]byte, error) {
	const op = "public_key_from_string"
	if err := e.checkInit(op); err != nil {
		return nil, err
	}
	pubKey, err := secp256k1.ParsePubKeyText(s, e.pubKeyPrefix)
	if err != nil {
		return nil, newError(op, err)
	}
	return pubKey, nil
}

// ToBase58 encodes b.
func (e *Engine) ToBase58(b []byte) (string, error) {
	if err := e.checkInit("to_base58"); err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

// FromBase58 decodes s.
func (e *Engine) FromBase58(s string) ([]byte, error) {
	const op = "from_base58"
	if err := e.checkInit(op); err != nil {
		return nil, err
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, newError(op, err)
	}
	return b, nil
}

// AddSignature appends sig to the signatures array of the JSON transaction
// tx.
func (e *Engine) AddSignature(tx string, sig []byte) (string, error) {
	const op = "add_signature"
	if err := e.checkInit(op); err != nil {
		return "", err
	}
	if len(sig) != secp256k1.SignatureSize {
		return "", newError(op, fmt.Errorf("%w: expected %d bytes, got %d",
			secp256k1.ErrInvalidSignature, secp256k1.SignatureSize, len(sig)))
	}
	out, err := types.AddSignature(types.Tx(tx), sig)
	if err != nil {
		return "", newError(op, err)
	}
	return string(out), nil
}
