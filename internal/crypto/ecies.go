package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"

	"github.com/ethereum/go-ethereum/crypto/ecies"
)

// Encrypt seals msg to pub with ECIES (AES-128-CTR, HMAC-SHA-256).
func Encrypt(pub *ecdsa.PublicKey, msg []byte) ([]byte, error) {
	return ecies.Encrypt(rand.Reader, ecies.ImportECDSAPublic(pub), msg, nil, nil)
}

// Decrypt opens an ECIES ciphertext produced for priv's public key.
func Decrypt(priv *ecdsa.PrivateKey, ct []byte) ([]byte, error) {
	return ecies.ImportECDSA(priv).Decrypt(ct, nil, nil)
}
