// Package fetcher resolves flip hashes into decoded flips.
//
// Bodies are fetched one hash at a time with a fixed delay between requests,
// consulting the local ciphertext cache before the node. Each attempt yields
// one domain.FlipUpdate:
//
//	flip_get reports missing        -> FlipMissing, retried
//	flip_get transport failure      -> FlipUnresolved, retried
//	flip_keys not available yet     -> FlipFetched, retried
//	decrypt or decode fails         -> FlipFailed, final
//	decoded                         -> FlipDecoded, final
//
// Retries back off exponentially (2^attempt seconds) until the caller
// cancels the context, which the engine does at its finalize deadline.
package fetcher
