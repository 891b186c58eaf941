// Package keystore keeps private keys on disk, one ASCII-armored file per
// key. The key is sealed with NaCl secretbox under a key
// derived from the passphrase with scrypt; the public key and id are stored
// in clear armor headers so keys can be listed without a passphrase.
package keystore

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"github.com/sophiatx/alexandria/crypto"
	"github.com/sophiatx/alexandria/crypto/armor"
	"github.com/sophiatx/alexandria/crypto/secp256k1"
	"github.com/sophiatx/alexandria/libs/log"
	alexos "github.com/sophiatx/alexandria/libs/os"
	alexsync "github.com/sophiatx/alexandria/libs/sync"
)

const (
	// BlockType is the armor type of key files.
	BlockType = "SPHTX PRIVATE KEY"
	fileExt   = ".asc"

	headerKDF    = "kdf"
	headerSalt   = "salt"
	headerN      = "scrypt-n"
	headerID     = "id"
	headerPubKey = "pubkey"

	kdfScrypt = "scrypt"
	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	// StandardScryptN is the scrypt cost used for new key files.
	StandardScryptN = 1 << 15
	// LightScryptN keeps tests fast. Do not use it for real keys.
	LightScryptN = 1 << 12

	scryptR = 8
	scryptP = 1
)

var (
	ErrKeyExists       = errors.New("key already exists")
	ErrKeyNotFound     = errors.New("key not found")
	ErrWrongPassphrase = errors.New("wrong passphrase")
	ErrInvalidName     = errors.New("invalid key name")
	ErrCorruptKeyFile  = errors.New("corrupt key file")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// Info describes a stored key without exposing it.
type Info struct {
	Name   string `json:"name"`
	ID     string `json:"id"`
	PubKey string `json:"pub_key"`
}

// Store is a directory of key files. It is safe for concurrent use.
type Store struct {
	mtx alexsync.Mutex

	dir     string
	prefix  string
	scryptN int
	rand    io.Reader
	logger  log.Logger
}

// Option sets a parameter for the store.
type Option func(*Store)

// WithScryptN sets the scrypt cost for new key files. Existing files record
// their own cost.
func WithScryptN(n int) Option {
	return func(s *Store) { s.scryptN = n }
}

// WithPubKeyPrefix sets the prefix of the stored public key strings.
func WithPubKeyPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithRandom replaces the CSPRNG used for salts, nonces and new keys.
func WithRandom(r io.Reader) Option {
	return func(s *Store) { s.rand = crypto.NewLockedReader(r) }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New opens the store kept in dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Store, error) {
	s := &Store{
		dir:     dir,
		prefix:  secp256k1.DefaultPubKeyPrefix,
		scryptN: StandardScryptN,
		rand:    crypto.CReader(),
		logger:  log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := alexos.EnsureDir(s.dir, 0o700); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the directory holding the key files.
func (s *Store) Dir() string {
	return s.dir
}

// Create generates a new key and stores it under name.
func (s *Store) Create(name, passphrase string) (Info, error) {
	privKey, err := secp256k1.GenPrivKeyFromReader(s.rand)
	if err != nil {
		return Info{}, err
	}
	defer privKey.Zero()
	return s.Import(name, privKey, passphrase)
}

// Import stores privKey under name. It fails with ErrKeyExists rather than
// overwrite a key.
func (s *Store) Import(name string, privKey secp256k1.PrivKey, passphrase string) (Info, error) {
	if err := validateName(name); err != nil {
		return Info{}, err
	}
	if err := privKey.Validate(); err != nil {
		return Info{}, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	path := s.path(name)
	if alexos.FileExists(path) {
		return Info{}, fmt.Errorf("%w: %s", ErrKeyExists, name)
	}

	salt := make([]byte, saltSize)
	if err := crypto.ReadFull(s.rand, salt); err != nil {
		return Info{}, err
	}
	var nonce [nonceSize]byte
	if err := crypto.ReadFull(s.rand, nonce[:]); err != nil {
		return Info{}, err
	}

	secret, err := deriveKey(passphrase, salt, s.scryptN)
	if err != nil {
		return Info{}, err
	}
	defer crypto.Zero(secret[:])

	sealed := secretbox.Seal(nonce[:], privKey, &nonce, secret)

	info := Info{
		Name:   name,
		ID:     uuid.New().String(),
		PubKey: privKey.PubKey().Text(s.prefix),
	}
	headers := map[string]string{
		headerKDF:    kdfScrypt,
		headerSalt:   hex.EncodeToString(salt),
		headerN:      strconv.Itoa(s.scryptN),
		headerID:     info.ID,
		headerPubKey: info.PubKey,
	}
	armored, err := armor.EncodeArmor(BlockType, headers, sealed)
	if err != nil {
		return Info{}, err
	}
	if err := alexos.WriteFileAtomic(path, []byte(armored), 0o600); err != nil {
		return Info{}, err
	}

	s.logger.Info("stored key", "name", name, "id", info.ID, "pubkey", info.PubKey)
	return info, nil
}

// Load opens the key stored under name.
func (s *Store) Load(name, passphrase string) (secp256k1.PrivKey, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	headers, sealed, err := s.read(name)
	if err != nil {
		return nil, err
	}

	salt, err := hex.DecodeString(headers[headerSalt])
	if err != nil || len(salt) != saltSize {
		return nil, fmt.Errorf("%w: bad salt", ErrCorruptKeyFile)
	}
	n, err := strconv.Atoi(headers[headerN])
	if err != nil {
		return nil, fmt.Errorf("%w: bad scrypt cost", ErrCorruptKeyFile)
	}
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: sealed key too short", ErrCorruptKeyFile)
	}

	secret, err := deriveKey(passphrase, salt, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptKeyFile, err)
	}
	defer crypto.Zero(secret[:])

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	opened, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, secret)
	if !ok {
		return nil, ErrWrongPassphrase
	}
	defer crypto.Zero(opened)

	privKey, err := secp256k1.PrivKeyFromBytes(opened)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptKeyFile, err)
	}
	return privKey, nil
}

// Get returns the public description of the key stored under name.
func (s *Store) Get(name string) (Info, error) {
	if err := validateName(name); err != nil {
		return Info{}, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	headers, _, err := s.read(name)
	if err != nil {
		return Info{}, err
	}
	return Info{Name: name, ID: headers[headerID], PubKey: headers[headerPubKey]}, nil
}

// List returns every stored key, sorted by name. Unreadable files are
// skipped and logged.
func (s *Store) List() ([]Info, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), fileExt)
		headers, _, err := s.read(name)
		if err != nil {
			s.logger.Error("skipping unreadable key file", "file", entry.Name(), "err", err)
			continue
		}
		infos = append(infos, Info{Name: name, ID: headers[headerID], PubKey: headers[headerPubKey]})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Delete removes the key stored under name after checking the passphrase.
func (s *Store) Delete(name, passphrase string) error {
	privKey, err := s.Load(name, passphrase)
	if err != nil {
		return err
	}
	privKey.Zero()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
		}
		return err
	}
	s.logger.Info("deleted key", "name", name)
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

func (s *Store) read(name string) (map[string]string, []byte, error) {
	bz, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
		}
		return nil, nil, err
	}
	headers, sealed, err := armor.DecodeBlock(string(bz), BlockType)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCorruptKeyFile, err)
	}
	if headers[headerKDF] != kdfScrypt {
		return nil, nil, fmt.Errorf("%w: unsupported kdf %q", ErrCorruptKeyFile, headers[headerKDF])
	}
	return headers, sealed, nil
}

func deriveKey(passphrase string, salt []byte, n int) (*[keySize]byte, error) {
	derived, err := scrypt.Key([]byte(passphrase), salt, n, scryptR, scryptP, keySize)
	if err != nil {
		return nil, err
	}
	var key [keySize]byte
	copy(key[:], derived)
	crypto.Zero(derived)
	return &key, nil
}

func validateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
