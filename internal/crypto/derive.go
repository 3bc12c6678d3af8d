package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"ceremony/internal/domain"
)

// FlipKeyRole selects which of the two per-epoch flip keys to derive.
type FlipKeyRole uint8

const (
	PublicFlipKey FlipKeyRole = iota
	PrivateFlipKey
)

func (r FlipKeyRole) seed(epoch domain.Epoch) []byte {
	if r == PrivateFlipKey {
		return []byte(fmt.Sprintf("flip-private-key-for-epoch-%d", epoch))
	}
	return []byte(fmt.Sprintf("flip-key-for-epoch-%d", epoch))
}

var one = big.NewInt(1)

// DeriveFlipKey deterministically derives the epoch's flip key for role from
// the long-term key. The signature is reduced to a scalar in [1, n-1] in a
// single pass: take the first 40 bytes, reduce mod n-1, add one.
func DeriveFlipKey(key *ecdsa.PrivateKey, epoch domain.Epoch, role FlipKeyRole) (*ecdsa.PrivateKey, error) {
	if key == nil {
		return nil, &domain.KeyDerivationError{Reason: "nil key"}
	}
	sig, err := Sign(Keccak256(role.seed(epoch)), key)
	if err != nil {
		return nil, &domain.KeyDerivationError{Reason: err.Error()}
	}
	return scalarFromSignature(sig)
}

func scalarFromSignature(sig []byte) (*ecdsa.PrivateKey, error) {
	n := ethcrypto.S256().Params().N
	byteLen := (n.BitLen()+7)/8 + 8

	k := new(big.Int).SetBytes(sig[:byteLen])
	k.Mod(k, new(big.Int).Sub(n, one))
	k.Add(k, one)

	priv, err := ethcrypto.ToECDSA(ScalarBytes(k))
	if err != nil {
		return nil, &domain.KeyDerivationError{Reason: err.Error()}
	}
	return priv, nil
}

// ShortAnswersSalt returns the epoch's commit salt:
// sha3-256(sign(keccak256("short-answers-salt-<epoch>"))).
func ShortAnswersSalt(key *ecdsa.PrivateKey, epoch domain.Epoch) ([]byte, error) {
	if key == nil {
		return nil, &domain.KeyDerivationError{Reason: "nil key"}
	}
	seed := Keccak256([]byte(fmt.Sprintf("short-answers-salt-%d", epoch)))
	sig, err := Sign(seed, key)
	if err != nil {
		return nil, &domain.KeyDerivationError{Reason: err.Error()}
	}
	return Sha3(sig), nil
}
