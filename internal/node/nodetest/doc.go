// Package nodetest provides an in-memory ceremony node speaking the same
// JSON-RPC dialect as the real one.
//
// It serves generated flips, hands out raw transaction templates, verifies
// and records signed transactions and key messages, and can be told to fail
// any method a number of times, either at the transport level (HTTP 503) or
// with an {error} reply. Tests mount Handler on an httptest.Server; cmd/devnode
// serves it on a port.
//
// All state is held in memory behind one mutex.
package nodetest
