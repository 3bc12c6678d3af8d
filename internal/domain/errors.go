package domain

import (
	"fmt"

	"golang.org/x/xerrors"
)

// ErrValidationTimeout marks a scheduled deadline reached without enough
// answers. It ends the ceremony for this epoch.
var ErrValidationTimeout = xerrors.New("not enough answers at deadline")

// NetworkError is a transport failure talking to the node: unreachable,
// timed out, or a non-2xx response.
type NetworkError struct {
	Method string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("node %s: %v", e.Method, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError is an error object returned by the node in a JSON-RPC reply.
type ProtocolError struct {
	Method  string
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("node %s rejected: %s", e.Method, e.Message)
}

// DecodeError reports corrupt ciphertext or a malformed payload.
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// KeyDerivationError reports a malformed caller-supplied key.
type KeyDerivationError struct {
	Reason string
}

func (e *KeyDerivationError) Error() string {
	return "invalid key: " + e.Reason
}

// IsNetwork reports whether err wraps a *NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return xerrors.As(err, &ne)
}

// IsProtocol reports whether err wraps a *ProtocolError.
func IsProtocol(err error) bool {
	var pe *ProtocolError
	return xerrors.As(err, &pe)
}

// IsDecode reports whether err wraps a *DecodeError.
func IsDecode(err error) bool {
	var de *DecodeError
	return xerrors.As(err, &de)
}
