package crypto

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"ceremony/internal/domain"
)

// PrivateKeyLength is the byte length of a serialized secp256k1 scalar.
const PrivateKeyLength = 32

// GenerateKey returns a fresh secp256k1 key.
func GenerateKey() (*ecdsa.PrivateKey, error) { return ethcrypto.GenerateKey() }

// ParsePrivateKey decodes a hex secp256k1 scalar. Malformed input yields a
// *domain.KeyDerivationError.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	raw, err := HexToBytes(hexKey)
	if err != nil {
		return nil, &domain.KeyDerivationError{Reason: "not hex"}
	}
	return PrivateKeyFromBytes(raw)
}

// PrivateKeyFromBytes parses a raw 32-byte scalar.
func PrivateKeyFromBytes(raw []byte) (*ecdsa.PrivateKey, error) {
	if len(raw) != PrivateKeyLength {
		return nil, &domain.KeyDerivationError{Reason: "want 32 bytes"}
	}
	k, err := ethcrypto.ToECDSA(raw)
	if err != nil {
		return nil, &domain.KeyDerivationError{Reason: err.Error()}
	}
	return k, nil
}

// PrivateKeyBytes serializes k as a 32-byte scalar.
func PrivateKeyBytes(k *ecdsa.PrivateKey) []byte { return ethcrypto.FromECDSA(k) }

// PublicKeyBytes serializes pub in 65-byte uncompressed form.
func PublicKeyBytes(pub *ecdsa.PublicKey) []byte { return ethcrypto.FromECDSAPub(pub) }

// ParsePublicKey decodes a 65-byte uncompressed secp256k1 point.
func ParsePublicKey(b []byte) (*ecdsa.PublicKey, error) { return ethcrypto.UnmarshalPubkey(b) }

// AddressOf returns the account address of pub.
func AddressOf(pub *ecdsa.PublicKey) common.Address { return ethcrypto.PubkeyToAddress(*pub) }
