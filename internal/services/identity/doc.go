// Package identity imports, seals and unlocks the participant's long-term
// secp256k1 key.
//
// It enforces passphrase policy, validates the key before anything is
// written, and persists it via the domain.KeyStore. Per-epoch flip keys are
// never stored; they are derived from the unlocked key on demand.
package identity
