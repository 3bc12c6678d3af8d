package keypackage

import (
	"crypto/ecdsa"

	"golang.org/x/xerrors"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
	"ceremony/internal/wire"
)

// ErrNotRecipient is returned by Open when no copy decrypts for the key.
var ErrNotRecipient = xerrors.New("no package entry for this key")

// ErrNoCandidates is returned by Build when no candidate key parses. An
// empty bundle cannot be sealed to the network key.
var ErrNoCandidates = xerrors.New("no usable key candidates")

// PublicKeyMessage carries the public flip key scalar for epoch.
func PublicKeyMessage(epoch domain.Epoch, publicFlipKey *ecdsa.PrivateKey) wire.FlipKeyMessage {
	return wire.FlipKeyMessage{Epoch: uint32(epoch), Data: crypto.PrivateKeyBytes(publicFlipKey)}
}

// Build seals privateFlipKey for every parseable candidate and wraps the
// bundle to networkKey. It returns the message and the number of copies.
func Build(
	epoch domain.Epoch,
	privateFlipKey *ecdsa.PrivateKey,
	networkKey *ecdsa.PublicKey,
	candidates [][]byte,
) (wire.FlipKeyMessage, int, error) {
	secret := crypto.PrivateKeyBytes(privateFlipKey)
	defer crypto.Wipe(secret)

	pkg := wire.PrivateKeysPackage{Data: make([][]byte, 0, len(candidates))}
	for _, c := range candidates {
		pub, err := crypto.ParsePublicKey(c)
		if err != nil {
			continue
		}
		sealed, err := crypto.Encrypt(pub, secret)
		if err != nil {
			return wire.FlipKeyMessage{}, 0, xerrors.Errorf("seal candidate copy: %w", err)
		}
		pkg.Data = append(pkg.Data, sealed)
	}
	if len(pkg.Data) == 0 {
		return wire.FlipKeyMessage{}, 0, ErrNoCandidates
	}

	bundle, err := pkg.Encode()
	if err != nil {
		return wire.FlipKeyMessage{}, 0, xerrors.Errorf("encode package: %w", err)
	}
	outer, err := crypto.Encrypt(networkKey, bundle)
	if err != nil {
		return wire.FlipKeyMessage{}, 0, xerrors.Errorf("seal package: %w", err)
	}
	return wire.FlipKeyMessage{Epoch: uint32(epoch), Data: outer}, len(pkg.Data), nil
}

// Open unwraps a package with the network key and returns the private flip
// key sealed for recipient.
func Open(data []byte, networkKey, recipient *ecdsa.PrivateKey) (*ecdsa.PrivateKey, error) {
	bundle, err := crypto.Decrypt(networkKey, data)
	if err != nil {
		return nil, &domain.DecodeError{What: "key package", Err: err}
	}
	pkg, err := wire.DecodePrivateKeysPackage(bundle)
	if err != nil {
		return nil, err
	}
	for _, sealed := range pkg.Data {
		secret, err := crypto.Decrypt(recipient, sealed)
		if err != nil {
			continue
		}
		return crypto.PrivateKeyFromBytes(secret)
	}
	return nil, ErrNotRecipient
}
