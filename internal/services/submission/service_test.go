package submission_test

import (
	"context"
	"crypto/ecdsa"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
	"ceremony/internal/node"
	"ceremony/internal/node/nodetest"
	"ceremony/internal/protocol/answers"
	"ceremony/internal/services/submission"
	"ceremony/internal/services/transaction"
	"ceremony/internal/wire"
)

const epoch = domain.Epoch(4)

var sample = []byte{138, 194, 81}

func setup(t *testing.T) (*nodetest.Node, *submission.Service, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	n := nodetest.New(epoch)
	srv := httptest.NewServer(n.Handler())
	t.Cleanup(srv.Close)

	log, _ := test.NewNullLogger()
	c := node.New(srv.URL, "", srv.Client(), log)
	tx := transaction.New(c, key, transaction.Options{
		SendAttempts:  1,
		SendRetry:     time.Millisecond,
		MinedPoll:     time.Millisecond,
		MaxMinedPolls: 5,
	}, log)
	return n, submission.New(tx, c, key, log), key
}

func TestCommitCarriesSaltedHash(t *testing.T) {
	n, svc, key := setup(t)

	hash, err := svc.CommitShortAnswers(context.Background(), epoch, sample)
	require.NoError(t, err)

	sent := n.TransactionsOfType(domain.SubmitAnswersHashTx)
	require.Len(t, sent, 1)
	require.Equal(t, hash, sent[0].Hash)

	salt, err := crypto.ShortAnswersSalt(key, epoch)
	require.NoError(t, err)
	require.Equal(t, answers.CommitHash(sample, salt), sent[0].Data.Payload)
}

func TestRevealRequiresMinedCommit(t *testing.T) {
	n, svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.RevealShortAnswers(ctx, epoch, sample)
	require.True(t, domain.IsProtocol(err))

	commit, err := svc.CommitShortAnswers(ctx, epoch, sample)
	require.NoError(t, err)
	require.NoError(t, svc.WaitMined(ctx, commit))

	_, err = svc.RevealShortAnswers(ctx, epoch, sample)
	require.NoError(t, err)
	require.Len(t, n.TransactionsOfType(domain.SubmitShortAnswersTx), 1)
}

func TestRevealCarriesVRFRandom(t *testing.T) {
	n, svc, key := setup(t)
	ctx := context.Background()

	commit, err := svc.CommitShortAnswers(ctx, epoch, sample)
	require.NoError(t, err)
	require.NoError(t, svc.WaitMined(ctx, commit))
	_, err = svc.RevealShortAnswers(ctx, epoch, sample)
	require.NoError(t, err)

	sent := n.TransactionsOfType(domain.SubmitShortAnswersTx)
	require.Len(t, sent, 1)
	var att wire.ShortAnswerAttachment
	require.NoError(t, wire.DecodeAttachment(sent[0].Data.Payload, &att))
	require.Equal(t, sample, att.Answers)

	index, _, err := crypto.VRFEvaluate(key, n.Seed())
	require.NoError(t, err)
	require.Equal(t, crypto.VRFRandom(index), att.Rnd)
}

func TestLongAnswersCarryProofKeyAndSalt(t *testing.T) {
	n, svc, key := setup(t)

	_, err := svc.SubmitLongAnswers(context.Background(), epoch, sample)
	require.NoError(t, err)

	sent := n.TransactionsOfType(domain.SubmitLongAnswersTx)
	require.Len(t, sent, 1)
	var att wire.LongAnswerAttachment
	require.NoError(t, wire.DecodeAttachment(sent[0].Data.Payload, &att))
	require.Equal(t, sample, att.Answers)

	_, err = crypto.VRFProofToHash(&key.PublicKey, n.Seed(), att.Proof)
	require.NoError(t, err)

	privFlip, err := crypto.DeriveFlipKey(key, epoch, crypto.PrivateFlipKey)
	require.NoError(t, err)
	require.Equal(t, crypto.PrivateKeyBytes(privFlip), att.Key)

	salt, err := crypto.ShortAnswersSalt(key, epoch)
	require.NoError(t, err)
	require.Equal(t, salt, att.Salt)
}

func TestSeedFailureStopsReveal(t *testing.T) {
	n, svc, _ := setup(t)
	n.FailNext("flip_wordsSeed", nodetest.FailNetwork, 1)

	_, err := svc.SubmitLongAnswers(context.Background(), epoch, sample)
	require.True(t, domain.IsNetwork(err))
	require.Empty(t, n.Transactions())
}
