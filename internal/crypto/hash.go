package crypto

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes the concatenation of data.
func Keccak256(data ...[]byte) []byte { return ethcrypto.Keccak256(data...) }

// Sha3 returns the FIPS-202 sha3-256 digest of data.
func Sha3(data []byte) []byte {
	sum := sha3.Sum256(data)
	return sum[:]
}
