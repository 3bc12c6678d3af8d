package types

import "github.com/ethereum/go-ethereum/common/hexutil"

// FlipCiphertext is the encrypted flip body as served by flip_get.
type FlipCiphertext struct {
	PublicHex  string `json:"publicHex"`
	PrivateHex string `json:"privateHex"`
}

// FlipKeyPair is the hex public/private flip key pair as served by flip_keys.
type FlipKeyPair struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// FlipWords carries the two dictionary indices of a flip.
type FlipWords struct {
	Words [2]uint32 `json:"words"`
}

// FlipWordPair is one keyword pair assigned to the author for the epoch.
type FlipWordPair struct {
	ID    int       `json:"id"`
	Words [2]uint32 `json:"words"`
	Used  bool      `json:"used"`
}

// SyncStatus is the bcn_syncing result.
type SyncStatus struct {
	Syncing      bool   `json:"syncing"`
	CurrentBlock uint64 `json:"currentBlock"`
	HighestBlock uint64 `json:"highestBlock"`
}

// Identity is the subset of dna_identity the client needs.
type Identity struct {
	Address       Address  `json:"address"`
	State         string   `json:"state"`
	PubKey        string   `json:"pubkey"`
	RequiredFlips int      `json:"requiredFlips"`
	MadeFlips     int      `json:"madeFlips"`
	Flips         []string `json:"flips"`
	Online        bool     `json:"online"`
}

// EpochInfo is the dna_epoch result.
type EpochInfo struct {
	Epoch                  Epoch  `json:"epoch"`
	NextValidation         string `json:"nextValidation"`
	CurrentPeriod          string `json:"currentPeriod"`
	CurrentValidationStart string `json:"currentValidationStart,omitempty"`
}

// CeremonyIntervals is the dna_ceremonyIntervals result, in seconds.
type CeremonyIntervals struct {
	FlipLotteryDuration  float64 `json:"FlipLotteryDuration"`
	ShortSessionDuration float64 `json:"ShortSessionDuration"`
	LongSessionDuration  float64 `json:"LongSessionDuration"`
}

// TxReceipt is the subset of bcn_transaction the client needs.
type TxReceipt struct {
	Hash      TxHash `json:"hash"`
	Type      string `json:"type"`
	BlockHash string `json:"blockHash"`
	Epoch     Epoch  `json:"epoch"`
}

// Mined reports whether the transaction landed in a block.
func (r TxReceipt) Mined() bool {
	return r.BlockHash != "" && r.BlockHash != "0x0000000000000000000000000000000000000000000000000000000000000000"
}

// RawTxArgs is the bcn_getRawTx argument object.
type RawTxArgs struct {
	Type    TxType        `json:"type"`
	From    Address       `json:"from"`
	To      *Address      `json:"to,omitempty"`
	Amount  string        `json:"amount,omitempty"`
	MaxFee  string        `json:"maxFee,omitempty"`
	Payload hexutil.Bytes `json:"payload,omitempty"`
}

// EncryptionKeyArgs carries a signed flip key message or key package.
type EncryptionKeyArgs struct {
	Data      hexutil.Bytes `json:"data"`
	Signature hexutil.Bytes `json:"signature"`
	Epoch     Epoch         `json:"epoch"`
}
