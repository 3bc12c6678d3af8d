// Package store provides on-disk persistence for the ceremony client.
//
// It contains concrete implementations of the domain storage interfaces.
// All methods are concurrency-safe. Stored files live under the configured
// home directory.
//
// The package includes:
//   - The participant key, sealed with scrypt + ChaCha20-Poly1305 (KeyFileStore)
//   - Resumable validation snapshots as JSON, one file per epoch (SnapshotFileStore)
//   - A bbolt cache of flip ciphertexts keyed by epoch and hash (FlipBoltCache)
//
// JSON files are written to a temp file and renamed into place so a crash
// never leaves a half-written snapshot behind.
package store
