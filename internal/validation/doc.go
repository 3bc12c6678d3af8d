// Package validation runs a validation ceremony for one epoch.
//
// An Engine owns the whole ceremony state and mutates it from a single
// dispatcher goroutine. Everything that blocks (RPCs, fetches, waiting for
// a transaction to be mined) runs in worker goroutines that report back by
// posting events, so handlers never run concurrently. The concerns that
// advance independently are held as fields of one Engine:
//
//	fetch state    per-flip status inside each session
//	answer state   Answering -> Committing -> Committed -> Revealing -> Revealed (short)
//	               Waiting -> Answering -> Submitting -> Submitted (long)
//	nav state      current index over the visible flips
//	key exchange   public key published, then private keys distributed
//
// Deadlines are derived from the absolute validation start (see Schedule)
// and are re-armed from it when a run is resumed from a Snapshot.
package validation
