package submission

import (
	"context"
	"crypto/ecdsa"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
	"ceremony/internal/protocol/answers"
	"ceremony/internal/wire"
)

// SeedSource provides the words seed the VRF is evaluated over.
type SeedSource interface {
	WordsSeed(ctx context.Context) ([]byte, error)
}

// Service signs and sends answer transactions.
type Service struct {
	tx   domain.TransactionService
	seed SeedSource
	key  *ecdsa.PrivateKey
	log  logrus.FieldLogger
}

// New returns a submission service. A nil log means the logrus standard
// logger.
func New(tx domain.TransactionService, seed SeedSource, key *ecdsa.PrivateKey, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{tx: tx, seed: seed, key: key, log: log}
}

// CommitShortAnswers sends the salted hash of the short answers.
func (s *Service) CommitShortAnswers(ctx context.Context, epoch domain.Epoch, data []byte) (domain.TxHash, error) {
	salt, err := crypto.ShortAnswersSalt(s.key, epoch)
	if err != nil {
		return "", err
	}
	return s.send(ctx, domain.SubmitAnswersHashTx, answers.CommitHash(data, salt))
}

// RevealShortAnswers sends the plaintext short answers. The commit must be
// mined first or the node rejects it.
func (s *Service) RevealShortAnswers(ctx context.Context, epoch domain.Epoch, data []byte) (domain.TxHash, error) {
	index, _, err := s.evaluate(ctx)
	if err != nil {
		return "", err
	}
	payload, err := wire.EncodeAttachment(&wire.ShortAnswerAttachment{
		Answers: data,
		Rnd:     crypto.VRFRandom(index),
	})
	if err != nil {
		return "", err
	}
	return s.send(ctx, domain.SubmitShortAnswersTx, payload)
}

// SubmitLongAnswers sends the long answers with the material needed to
// verify the short commit and open the participant's flips.
func (s *Service) SubmitLongAnswers(ctx context.Context, epoch domain.Epoch, data []byte) (domain.TxHash, error) {
	_, proof, err := s.evaluate(ctx)
	if err != nil {
		return "", err
	}
	salt, err := crypto.ShortAnswersSalt(s.key, epoch)
	if err != nil {
		return "", err
	}
	privFlip, err := crypto.DeriveFlipKey(s.key, epoch, crypto.PrivateFlipKey)
	if err != nil {
		return "", err
	}
	defer crypto.ZeroKey(privFlip)
	flipKey := crypto.PrivateKeyBytes(privFlip)
	defer crypto.Wipe(flipKey)

	payload, err := wire.EncodeAttachment(&wire.LongAnswerAttachment{
		Answers: data,
		Proof:   proof,
		Key:     flipKey,
		Salt:    salt,
	})
	if err != nil {
		return "", err
	}
	return s.send(ctx, domain.SubmitLongAnswersTx, payload)
}

// WaitMined blocks until hash is mined.
func (s *Service) WaitMined(ctx context.Context, hash domain.TxHash) error {
	return s.tx.WaitMined(ctx, hash)
}

func (s *Service) evaluate(ctx context.Context) ([32]byte, []byte, error) {
	seed, err := s.seed.WordsSeed(ctx)
	if err != nil {
		return [32]byte{}, nil, xerrors.Errorf("load words seed: %w", err)
	}
	return crypto.VRFEvaluate(s.key, seed)
}

func (s *Service) send(ctx context.Context, t domain.TxType, payload []byte) (domain.TxHash, error) {
	hash, err := s.tx.Send(ctx, domain.TxRequest{Type: t, Payload: payload})
	if err != nil {
		return "", err
	}
	s.log.WithFields(logrus.Fields{"type": t.String(), "tx": hash}).Info("answers sent")
	return hash, nil
}

// Compile-time assertion that Service implements domain.AnswerSubmitter.
var _ domain.AnswerSubmitter = (*Service)(nil)
