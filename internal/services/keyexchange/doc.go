// Package keyexchange publishes the participant's flip encryption keys.
//
// Both flip keys are derived deterministically from the long-term key and
// the epoch. The public flip key scalar is broadcast as a signed message so
// anyone can open the public halves of the participant's flips. The private
// flip key is sealed once per candidate recipient, the copies are bundled,
// and the bundle is sealed again to the network key before broadcast.
package keyexchange
