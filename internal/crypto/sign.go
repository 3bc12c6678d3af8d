package crypto

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/xerrors"
)

// SignatureLength is r || s || v.
const SignatureLength = 65

// Sign produces a 65-byte recoverable signature over a 32-byte digest.
func Sign(digest []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	return ethcrypto.Sign(digest, key)
}

// SignData signs keccak256(data).
func SignData(data []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	return Sign(Keccak256(data), key)
}

// RecoverAddress returns the address whose key produced sig over digest.
func RecoverAddress(digest, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, xerrors.Errorf("signature length %d", len(sig))
	}
	pub, err := ethcrypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, xerrors.Errorf("recover: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
