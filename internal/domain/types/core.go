package types

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

// Address is a 20-byte account address.
type Address = common.Address

// Epoch numbers a validation ceremony.
type Epoch uint16

// String returns the decimal form of the epoch.
func (e Epoch) String() string { return strconv.FormatUint(uint64(e), 10) }

// FlipHash is the content identifier of a flip as reported by the node.
type FlipHash string

// String returns the string form of the flip hash.
func (h FlipHash) String() string { return string(h) }

// TxHash is the hex hash of a broadcast transaction.
type TxHash string

// String returns the string form of the transaction hash.
func (h TxHash) String() string { return string(h) }

// SessionKind selects the short or long validation session.
type SessionKind uint8

const (
	ShortSession SessionKind = iota
	LongSession
)

func (k SessionKind) String() string {
	if k == LongSession {
		return "long"
	}
	return "short"
}
