// Package submission turns serialized answers into ceremony transactions.
//
// The short session is a two step commit and reveal: the commit carries
// keccak256(answers || salt) where the salt is derived from the long-term
// key, and the reveal carries the plaintext answers with a VRF random over
// the epoch words seed. The long session submits answers, the VRF proof,
// the private flip key and the salt in one transaction.
package submission
