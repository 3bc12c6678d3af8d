package validation_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
	"ceremony/internal/node"
	"ceremony/internal/node/nodetest"
	"ceremony/internal/services/fetcher"
	"ceremony/internal/services/keyexchange"
	"ceremony/internal/services/submission"
	"ceremony/internal/services/transaction"
	"ceremony/internal/validation"
)

func TestCeremonyAgainstNode(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.AddressOf(&key.PublicKey)
	peer, err := crypto.GenerateKey()
	require.NoError(t, err)

	n := nodetest.New(5)
	n.SetIdentity(domain.Identity{Address: addr, State: "Verified"})
	n.SetCandidates(&peer.PublicKey)
	for i := 0; i < 3; i++ {
		_, err := n.AddFlip(domain.ShortSession, nodetest.FlipOptions{})
		require.NoError(t, err)
	}
	_, err = n.AddFlip(domain.ShortSession, nodetest.FlipOptions{Extra: true})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := n.AddFlip(domain.LongSession, nodetest.FlipOptions{Words: [2]uint32{uint32(i), 7}})
		require.NoError(t, err)
	}
	srv := httptest.NewServer(n.Handler())
	t.Cleanup(srv.Close)

	log, _ := test.NewNullLogger()
	c := node.New(srv.URL, "", srv.Client(), log)
	tx := transaction.New(c, key, transaction.Options{
		SendAttempts:  2,
		SendRetry:     time.Millisecond,
		MinedPoll:     time.Millisecond,
		MaxMinedPolls: 50,
	}, log)
	deps := validation.Deps{
		Fetcher:   fetcher.New(c, nil, fetcher.Options{Pacing: time.Millisecond, BackoffUnit: time.Millisecond}, log),
		Keys:      keyexchange.New(c, key, log),
		Submitter: submission.New(tx, c, key, log),
		Chain:     c,
	}

	sched := testSchedule()
	sched.ShortLead = 100 * time.Millisecond
	e := validation.New(deps, validation.Options{
		Epoch:    5,
		Address:  addr,
		Timing:   domain.Timing{ValidationStart: time.Now(), ShortSession: 600 * time.Millisecond, LongSession: time.Minute},
		Schedule: sched,
		Log:      log,
	})
	errc := run(t, e)

	v := waitFor(t, e, solvable(3))
	for _, f := range v.Short.Flips {
		require.Len(t, f.Images, 4)
		send(t, e, validation.AnswerFlip{Session: domain.ShortSession, Hash: f.Hash, Answer: domain.AnswerLeft})
	}
	send(t, e, validation.Submit{Session: domain.ShortSession})

	v = waitFor(t, e, func(v validation.View) bool { return v.Long.Solvable == 2 })
	for _, f := range v.Long.Flips {
		require.NotNil(t, f.Keywords)
		require.Equal(t, uint32(7), f.Keywords.Words[1])
		send(t, e, validation.AnswerFlip{Session: domain.LongSession, Hash: f.Hash, Answer: domain.AnswerRight})
	}
	send(t, e, validation.ApproveWords{Hash: v.Long.Flips[0].Hash, Grade: domain.Grade3})
	send(t, e, validation.Submit{Session: domain.LongSession})

	require.NoError(t, waitResult(t, errc))
	require.Equal(t, validation.PhaseSucceeded, e.View().Phase)

	require.Len(t, n.TransactionsOfType(domain.SubmitAnswersHashTx), 1)
	require.Len(t, n.TransactionsOfType(domain.SubmitShortAnswersTx), 1)
	require.Len(t, n.TransactionsOfType(domain.SubmitLongAnswersTx), 1)
	require.Len(t, n.PublicKeys(), 1)
	require.Len(t, n.PrivatePackages(), 1)
}
