package wire

import (
	"crypto/ecdsa"

	"go.dedis.ch/protobuf"
	"golang.org/x/xerrors"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
)

// FlipKeyMessage carries either the public flip key or the encrypted
// private key package for an epoch.
type FlipKeyMessage struct {
	Epoch uint32
	Data  []byte
}

// PrivateKeysPackage is the list of per-candidate encrypted private flip keys.
type PrivateKeysPackage struct {
	Data [][]byte
}

// Digest is keccak256 of the encoded message.
func (m *FlipKeyMessage) Digest() ([]byte, error) {
	raw, err := protobuf.Encode(m)
	if err != nil {
		return nil, xerrors.Errorf("encode key message: %w", err)
	}
	return crypto.Keccak256(raw), nil
}

// SignedArgs signs the message with the long-term key and returns the RPC
// argument object.
func (m *FlipKeyMessage) SignedArgs(key *ecdsa.PrivateKey) (domain.EncryptionKeyArgs, error) {
	digest, err := m.Digest()
	if err != nil {
		return domain.EncryptionKeyArgs{}, err
	}
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return domain.EncryptionKeyArgs{}, xerrors.Errorf("sign key message: %w", err)
	}
	return domain.EncryptionKeyArgs{
		Data:      m.Data,
		Signature: sig,
		Epoch:     domain.Epoch(m.Epoch),
	}, nil
}

// VerifyKeyArgs recovers the address that signed args.
func VerifyKeyArgs(args domain.EncryptionKeyArgs) (domain.Address, error) {
	m := FlipKeyMessage{Epoch: uint32(args.Epoch), Data: args.Data}
	digest, err := m.Digest()
	if err != nil {
		return domain.Address{}, err
	}
	return crypto.RecoverAddress(digest, args.Signature)
}

// Encode serializes the package.
func (p *PrivateKeysPackage) Encode() ([]byte, error) {
	return protobuf.Encode(p)
}

// DecodePrivateKeysPackage parses an encoded package.
func DecodePrivateKeysPackage(raw []byte) (*PrivateKeysPackage, error) {
	var p PrivateKeysPackage
	if err := protobuf.Decode(raw, &p); err != nil {
		return nil, &domain.DecodeError{What: "key package", Err: err}
	}
	return &p, nil
}
