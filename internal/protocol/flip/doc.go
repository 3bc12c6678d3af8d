// Package flip decrypts and decodes flip ciphertexts into images and
// presentation orders.
//
// # Format
//
// A flip travels as two ECIES ciphertexts. The public half is sealed to the
// author's public flip key for the epoch and holds an RLP list of the first
// two images:
//
//	[[img1, img2]]
//
// The private half is sealed to the author's private flip key and holds the
// remaining images and the two order permutations, one per answer side:
//
//	[[img3, img4], [order1, order2]]
//
// Each order is a list of image indices encoded as RLP byte strings; the
// empty string is index 0.
//
// # Errors
//
// Decode never panics on hostile input. Every failure is a *domain.DecodeError
// and callers mark the flip unsolvable instead of aborting the session.
package flip
