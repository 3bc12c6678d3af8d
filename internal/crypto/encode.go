package crypto

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

// HexToBytes decodes s with or without a 0x prefix. Odd-length input is
// treated as if it had a leading zero nibble.
func HexToBytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

// BytesToHex returns the 0x-prefixed lowercase hex form of b.
func BytesToHex(b []byte) string { return hexutil.Encode(b) }

// BigToBytes returns the minimal big-endian bytes of v. Zero and nil map to
// an empty slice.
func BigToBytes(v *big.Int) []byte {
	if v == nil || v.Sign() == 0 {
		return []byte{}
	}
	return v.Bytes()
}

// BytesToBig interprets b as an unsigned big-endian integer.
func BytesToBig(b []byte) *big.Int { return new(big.Int).SetBytes(b) }

// ScalarBytes left-pads v to a 32-byte curve scalar.
func ScalarBytes(v *big.Int) []byte { return math.PaddedBigBytes(v, 32) }
