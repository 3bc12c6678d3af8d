package transaction

import (
	"context"
	"crypto/ecdsa"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
	"ceremony/internal/wire"
)

// ErrNotMined is wrapped in a *domain.NetworkError when a transaction is
// still pending after the poll budget.
var ErrNotMined = xerrors.New("transaction not mined")

// Options tunes retry and polling.
type Options struct {
	SendAttempts  int
	SendRetry     time.Duration
	MinedPoll     time.Duration
	MaxMinedPolls int
}

// DefaultOptions returns the production policy.
func DefaultOptions() Options {
	return Options{
		SendAttempts:  3,
		SendRetry:     time.Second,
		MinedPoll:     10 * time.Second,
		MaxMinedPolls: 30,
	}
}

// Service signs transactions with the participant key.
type Service struct {
	node domain.TxNode
	key  *ecdsa.PrivateKey
	from domain.Address
	opts Options
	log  logrus.FieldLogger
}

// New returns a transaction service. A nil log means the logrus standard logger.
func New(node domain.TxNode, key *ecdsa.PrivateKey, opts Options, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.SendAttempts < 1 {
		opts.SendAttempts = 1
	}
	return &Service{
		node: node,
		key:  key,
		from: crypto.AddressOf(&key.PublicKey),
		opts: opts,
		log:  log,
	}
}

// From returns the signing address.
func (s *Service) From() domain.Address { return s.from }

// Build fetches and decodes an unsigned template for req.
func (s *Service) Build(ctx context.Context, req domain.TxRequest) (*wire.Transaction, error) {
	raw, err := s.node.GetRawTx(ctx, domain.RawTxArgs{
		Type:    req.Type,
		From:    s.from,
		To:      req.To,
		Amount:  req.Amount,
		MaxFee:  req.MaxFee,
		Payload: req.Payload,
	})
	if err != nil {
		return nil, xerrors.Errorf("build %s: %w", req.Type, err)
	}
	tx, err := wire.DecodeTransaction(raw)
	if err != nil {
		return nil, err
	}
	if tx.Data.Type != uint32(req.Type) {
		return nil, &domain.ProtocolError{Method: "bcn_getRawTx", Message: "template has wrong type"}
	}
	return tx, nil
}

// Send builds, signs and broadcasts req and returns the node's tx hash.
func (s *Service) Send(ctx context.Context, req domain.TxRequest) (domain.TxHash, error) {
	tx, err := s.Build(ctx, req)
	if err != nil {
		return "", err
	}
	if err := tx.Sign(s.key); err != nil {
		return "", err
	}
	raw, err := tx.Encode()
	if err != nil {
		return "", xerrors.Errorf("encode %s: %w", req.Type, err)
	}

	log := s.log.WithFields(logrus.Fields{"type": req.Type.String(), "nonce": tx.Data.Nonce})
	var lastErr error
	for attempt := 1; attempt <= s.opts.SendAttempts; attempt++ {
		hash, err := s.node.SendRawTx(ctx, raw)
		if err == nil {
			log.WithField("tx", hash).Info("transaction sent")
			return hash, nil
		}
		lastErr = err
		if !domain.IsNetwork(err) {
			return "", xerrors.Errorf("send %s: %w", req.Type, err)
		}
		log.WithError(err).WithField("attempt", attempt).Warn("send failed")
		if attempt < s.opts.SendAttempts {
			if err := sleep(ctx, s.opts.SendRetry); err != nil {
				return "", err
			}
		}
	}
	return "", xerrors.Errorf("send %s: %w", req.Type, lastErr)
}

// WaitMined polls until hash is in a block, the poll budget runs out or ctx
// ends. Lookup failures count against the budget.
func (s *Service) WaitMined(ctx context.Context, hash domain.TxHash) error {
	log := s.log.WithField("tx", hash)
	for poll := 1; poll <= s.opts.MaxMinedPolls; poll++ {
		receipt, err := s.node.Transaction(ctx, hash)
		switch {
		case err != nil:
			log.WithError(err).WithField("attempt", poll).Debug("lookup failed")
		case receipt.Mined():
			log.Info("transaction mined")
			return nil
		}
		if poll < s.opts.MaxMinedPolls {
			if err := sleep(ctx, s.opts.MinedPoll); err != nil {
				return err
			}
		}
	}
	return &domain.NetworkError{Method: "bcn_transaction", Err: ErrNotMined}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Compile-time assertion that Service implements domain.TransactionService.
var _ domain.TransactionService = (*Service)(nil)
