package store

import (
	"os"
	"path/filepath"
	"sync"

	"ceremony/internal/domain"
	"ceremony/internal/util/memzero"
)

const keyFilename = "nodekey.enc"

// KeyFileStore persists the participant's private key to disk, sealed under a
// passphrase.
type KeyFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewKeyFileStore returns a KeyFileStore rooted at dir.
func NewKeyFileStore(dir string) *KeyFileStore {
	return &KeyFileStore{dir: dir}
}

// SaveKey encrypts key and writes it atomically. The caller's slice is left
// untouched.
func (s *KeyFileStore) SaveKey(passphrase string, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	N, r, p := scryptParamsDefault()
	ct, err := encrypt(passphrase, key, N, r, p)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, keyFilename), ct, 0o600)
}

// LoadKey reads and decrypts the key.
func (s *KeyFileStore) LoadKey(passphrase string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(s.dir, keyFilename))
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(b)
	return decrypt(passphrase, b)
}

// Exists reports whether a key file is present.
func (s *KeyFileStore) Exists() bool {
	_, err := os.Stat(filepath.Join(s.dir, keyFilename))
	return err == nil
}

// Compile-time assertion that KeyFileStore implements domain.KeyStore.
var _ domain.KeyStore = (*KeyFileStore)(nil)
