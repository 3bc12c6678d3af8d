package interfaces

import (
	"context"
	"crypto/ecdsa"

	domaintypes "ceremony/internal/domain/types"
)

// IdentityService imports and unlocks the participant key.
type IdentityService interface {
	ImportKey(passphrase, hexKey string) (domaintypes.Address, error)
	UnlockKey(passphrase string) (*ecdsa.PrivateKey, error)
}

// TransactionService signs and broadcasts node-built transactions.
type TransactionService interface {
	Send(ctx context.Context, req domaintypes.TxRequest) (domaintypes.TxHash, error)
	WaitMined(ctx context.Context, hash domaintypes.TxHash) error
}

// FlipFetcher resolves flip hashes into decoded flips.
type FlipFetcher interface {
	Hashes(ctx context.Context, kind domaintypes.SessionKind) ([]domaintypes.FlipHashInfo, error)
	// Fetch streams one update per attempt until every hash is terminal or
	// ctx is cancelled.
	Fetch(
		ctx context.Context,
		epoch domaintypes.Epoch,
		kind domaintypes.SessionKind,
		hashes []domaintypes.FlipHash,
		updates chan<- domaintypes.FlipUpdate,
	) error
}

// KeyExchanger publishes the participant's flip keys for the epoch.
type KeyExchanger interface {
	PublishPublicKey(ctx context.Context, epoch domaintypes.Epoch) error
	// DistributePrivateKeys reports false without sending when the identity
	// has not made its required flips or no candidate key is usable.
	DistributePrivateKeys(ctx context.Context, epoch domaintypes.Epoch) (bool, error)
}

// AnswerSubmitter sends answer transactions for both sessions.
type AnswerSubmitter interface {
	CommitShortAnswers(ctx context.Context, epoch domaintypes.Epoch, answers []byte) (domaintypes.TxHash, error)
	RevealShortAnswers(ctx context.Context, epoch domaintypes.Epoch, answers []byte) (domaintypes.TxHash, error)
	SubmitLongAnswers(ctx context.Context, epoch domaintypes.Epoch, answers []byte) (domaintypes.TxHash, error)
	WaitMined(ctx context.Context, hash domaintypes.TxHash) error
}
