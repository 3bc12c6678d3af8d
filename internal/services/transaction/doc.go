// Package transaction builds, signs and broadcasts protocol transactions.
//
// The node fills nonce, epoch and fees through bcn_getRawTx. The template is
// decoded into wire.Transaction, signed once with the participant key and
// broadcast with bcn_sendRawTx. Network failures resend the same signed
// bytes, which the node deduplicates by hash; an {error} reply is returned
// at once and never resent.
package transaction
