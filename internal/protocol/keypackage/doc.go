// Package keypackage builds the per-epoch flip key messages.
//
// # Overview
//
// Each epoch a participant publishes two things derived from its long-term key:
//   - the public flip key, in the clear, so every participant can open the
//     public halves of its flips once validation starts
//   - the private flip key, wrapped separately for each candidate recipient
//     the node names, so only they can open the private halves
//
// # Package layout
//
// Every candidate copy is ECIES-sealed to that candidate's public key. The
// copies are bundled as a wire.PrivateKeysPackage and the whole bundle is
// sealed again to a network key (the participant's public flip key). The
// result is carried in a wire.FlipKeyMessage signed by the long-term key.
//
// Candidates with unparseable public keys are skipped rather than failing the
// whole package.
package keypackage
