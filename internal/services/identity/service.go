package identity

import (
	"crypto/ecdsa"
	"fmt"
	"unicode"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
)

// Service manages the long-term key using a backing store.
type Service struct {
	store domain.KeyStore
}

// New returns an identity service backed by the given store.
func New(s domain.KeyStore) *Service { return &Service{store: s} }

// ImportKey validates hexKey, seals it with passphrase and returns the
// account address it controls.
func (s *Service) ImportKey(passphrase, hexKey string) (domain.Address, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.Address{}, ErrWeakPassphrase
	}
	key, err := crypto.ParsePrivateKey(hexKey)
	if err != nil {
		return domain.Address{}, err
	}
	defer crypto.ZeroKey(key)

	raw := crypto.PrivateKeyBytes(key)
	defer crypto.Wipe(raw)
	if err := s.store.SaveKey(passphrase, raw); err != nil {
		return domain.Address{}, err
	}
	return crypto.AddressOf(&key.PublicKey), nil
}

// UnlockKey decrypts and parses the stored key. Callers should ZeroKey it
// when done.
func (s *Service) UnlockKey(passphrase string) (*ecdsa.PrivateKey, error) {
	raw, err := s.store.LoadKey(passphrase)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(raw)
	return crypto.PrivateKeyFromBytes(raw)
}

// Address returns the account address of the stored key.
func (s *Service) Address(passphrase string) (domain.Address, error) {
	key, err := s.UnlockKey(passphrase)
	if err != nil {
		return domain.Address{}, err
	}
	defer crypto.ZeroKey(key)
	return crypto.AddressOf(&key.PublicKey), nil
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
