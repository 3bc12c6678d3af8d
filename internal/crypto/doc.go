// Package crypto exposes the primitives the ceremony client is built on.
//
// Contents
//
//   - Hex, byte and big-integer conversions (HexToBytes, BytesToHex, BigToBytes)
//   - secp256k1 key parsing and address derivation (ParsePrivateKey, AddressOf)
//   - Recoverable ECDSA signatures (Sign, SignData, RecoverAddress)
//   - keccak256 and sha3-256 hashing (Keccak256, Sha3)
//   - Per-epoch flip key and salt derivation (DeriveFlipKey, ShortAnswersSalt)
//   - ECIES encryption to secp256k1 public keys (Encrypt, Decrypt)
//   - A verifiable random function over secp256k1 (VRFEvaluate, VRFProofToHash)
//   - Best-effort wiping of private keys (ZeroKey)
//
// # Notes
//
// Derived keys are never persisted. Signatures are deterministic (RFC 6979),
// so everything here is a pure function of its inputs except Encrypt and
// VRFEvaluate, which draw from crypto/rand.
package crypto
