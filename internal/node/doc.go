// Package node provides a JSON-RPC client for the ceremony node.
//
// Every call is a POST of {method, params, id, key} to the node URL. The
// reply carries either {result} or {error: {message}}.
//
// Failures are classified for the retry policy upstream:
//   - transport errors, timeouts and non-2xx statuses are *domain.NetworkError
//   - an {error} reply is *domain.ProtocolError
//   - a result that does not match the expected shape is *domain.DecodeError
//
// All methods accept a context for cancellation and deadlines.
package node
