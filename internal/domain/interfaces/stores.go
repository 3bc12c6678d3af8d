package interfaces

import domaintypes "ceremony/internal/domain/types"

// KeyStore persists the participant's secp256k1 key under a passphrase.
type KeyStore interface {
	SaveKey(passphrase string, key []byte) error
	LoadKey(passphrase string) ([]byte, error)
	Exists() bool
}

// SnapshotStore persists resumable validation state per epoch.
type SnapshotStore interface {
	SaveSnapshot(snap domaintypes.Snapshot) error
	LoadSnapshot(epoch domaintypes.Epoch) (domaintypes.Snapshot, bool, error)
	DeleteSnapshot(epoch domaintypes.Epoch) error
}

// FlipCache keeps fetched flip ciphertexts across restarts.
type FlipCache interface {
	GetFlip(epoch domaintypes.Epoch, hash domaintypes.FlipHash) (domaintypes.FlipCiphertext, bool, error)
	PutFlip(epoch domaintypes.Epoch, hash domaintypes.FlipHash, ct domaintypes.FlipCiphertext) error
	PruneBefore(epoch domaintypes.Epoch) error
}
