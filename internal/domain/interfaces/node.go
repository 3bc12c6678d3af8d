package interfaces

import (
	"context"

	domaintypes "ceremony/internal/domain/types"
)

// FlipNode serves flip hashes, bodies and keywords.
type FlipNode interface {
	ShortHashes(ctx context.Context) ([]domaintypes.FlipHashInfo, error)
	LongHashes(ctx context.Context) ([]domaintypes.FlipHashInfo, error)
	GetFlip(ctx context.Context, hash domaintypes.FlipHash) (domaintypes.FlipCiphertext, error)
	FlipKeys(ctx context.Context, hash domaintypes.FlipHash) (domaintypes.FlipKeyPair, error)
	Words(ctx context.Context, hash domaintypes.FlipHash) (domaintypes.FlipWords, error)
	WordPairs(ctx context.Context, addr domaintypes.Address, vrfHash []byte) ([]domaintypes.FlipWordPair, error)
	WordsSeed(ctx context.Context) ([]byte, error)
}

// KeyExchangeNode relays flip encryption keys between participants.
type KeyExchangeNode interface {
	PrivateEncryptionKeyCandidates(ctx context.Context) ([][]byte, error)
	SendPublicEncryptionKey(ctx context.Context, args domaintypes.EncryptionKeyArgs) error
	SendPrivateEncryptionKeysPackage(ctx context.Context, args domaintypes.EncryptionKeyArgs) error
}

// TxNode builds, broadcasts and looks up transactions.
type TxNode interface {
	GetRawTx(ctx context.Context, args domaintypes.RawTxArgs) ([]byte, error)
	SendRawTx(ctx context.Context, raw []byte) (domaintypes.TxHash, error)
	Transaction(ctx context.Context, hash domaintypes.TxHash) (domaintypes.TxReceipt, error)
}

// ChainNode reports sync, identity and epoch state.
type ChainNode interface {
	Syncing(ctx context.Context) (domaintypes.SyncStatus, error)
	Identity(ctx context.Context, addr domaintypes.Address) (domaintypes.Identity, error)
	IsValidationReady(ctx context.Context) (bool, error)
	Epoch(ctx context.Context) (domaintypes.EpochInfo, error)
	CeremonyIntervals(ctx context.Context) (domaintypes.CeremonyIntervals, error)
}

// NodeClient is the full JSON-RPC surface consumed by the client.
type NodeClient interface {
	FlipNode
	KeyExchangeNode
	TxNode
	ChainNode
}
