package keyexchange

import (
	"context"
	"crypto/ecdsa"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
	"ceremony/internal/protocol/keypackage"
)

// Node is the subset of the node API used for key exchange.
type Node interface {
	domain.KeyExchangeNode
	domain.ChainNode
}

// Service derives, packages and broadcasts flip keys.
type Service struct {
	node Node
	key  *ecdsa.PrivateKey
	addr domain.Address
	log  logrus.FieldLogger
}

// New returns a key exchange service for key. A nil log means the logrus
// standard logger.
func New(node Node, key *ecdsa.PrivateKey, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{node: node, key: key, addr: crypto.AddressOf(&key.PublicKey), log: log}
}

// PublishPublicKey broadcasts the public flip key for epoch.
func (s *Service) PublishPublicKey(ctx context.Context, epoch domain.Epoch) error {
	pubFlip, err := crypto.DeriveFlipKey(s.key, epoch, crypto.PublicFlipKey)
	if err != nil {
		return err
	}
	defer crypto.ZeroKey(pubFlip)

	msg := keypackage.PublicKeyMessage(epoch, pubFlip)
	defer crypto.Wipe(msg.Data)
	args, err := msg.SignedArgs(s.key)
	if err != nil {
		return xerrors.Errorf("sign public key message: %w", err)
	}
	if err := s.node.SendPublicEncryptionKey(ctx, args); err != nil {
		return xerrors.Errorf("publish public flip key: %w", err)
	}
	s.log.WithField("epoch", epoch).Info("public flip key published")
	return nil
}

// DistributePrivateKeys sends the private key package once the identity has
// made its required flips and at least one candidate key parses. It reports
// whether a package was sent.
func (s *Service) DistributePrivateKeys(ctx context.Context, epoch domain.Epoch) (bool, error) {
	id, err := s.node.Identity(ctx, s.addr)
	if err != nil {
		return false, xerrors.Errorf("load identity: %w", err)
	}
	if id.MadeFlips < id.RequiredFlips {
		s.log.WithFields(logrus.Fields{
			"made":     id.MadeFlips,
			"required": id.RequiredFlips,
		}).Debug("required flips not made, private keys withheld")
		return false, nil
	}

	candidates, err := s.node.PrivateEncryptionKeyCandidates(ctx)
	if err != nil {
		return false, xerrors.Errorf("load key candidates: %w", err)
	}

	pubFlip, err := crypto.DeriveFlipKey(s.key, epoch, crypto.PublicFlipKey)
	if err != nil {
		return false, err
	}
	defer crypto.ZeroKey(pubFlip)
	privFlip, err := crypto.DeriveFlipKey(s.key, epoch, crypto.PrivateFlipKey)
	if err != nil {
		return false, err
	}
	defer crypto.ZeroKey(privFlip)

	msg, copies, err := keypackage.Build(epoch, privFlip, &pubFlip.PublicKey, candidates)
	if xerrors.Is(err, keypackage.ErrNoCandidates) {
		s.log.WithField("candidates", len(candidates)).Debug("no usable key candidates yet")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	args, err := msg.SignedArgs(s.key)
	if err != nil {
		return false, xerrors.Errorf("sign key package: %w", err)
	}
	if err := s.node.SendPrivateEncryptionKeysPackage(ctx, args); err != nil {
		return false, xerrors.Errorf("publish key package: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"epoch":      epoch,
		"candidates": len(candidates),
		"copies":     copies,
	}).Info("private flip keys distributed")
	return true, nil
}

// Compile-time assertion that Service implements domain.KeyExchanger.
var _ domain.KeyExchanger = (*Service)(nil)
