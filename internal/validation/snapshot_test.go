package validation_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"ceremony/internal/domain"
	"ceremony/internal/store"
	"ceremony/internal/validation"
)

func baseSnapshot() domain.Snapshot {
	return domain.Snapshot{
		RunID: "3f0c1f4e-5d2b-4d8e-9a51-7c2f0e9d4b11",
		Epoch: 9,
		Timing: domain.Timing{
			ValidationStart: time.Now(),
			ShortSession:    time.Hour,
			LongSession:     time.Hour,
		},
		Phase: string(validation.PhaseShort),
		Short: domain.SessionSnapshot{State: string(validation.StateAnswering)},
		Long:  domain.SessionSnapshot{State: string(validation.StateWaiting)},
	}
}

func TestResumeResetsFetchState(t *testing.T) {
	h := newHarness(t)
	h.fetcher.add(domain.ShortSession, false, "a", "b", "c")

	snap := baseSnapshot()
	snap.PublicKeySent = true
	snap.PrivateKeysSent = true
	snap.Short.Hashes = []domain.FlipHash{"a", "b", "c"}
	snap.Short.Display = []domain.FlipHash{"a", "b", "c"}
	snap.Short.Flips = []domain.Flip{
		{Hash: "a", Status: domain.FlipDecoded, Answer: domain.AnswerLeft, Favorite: true},
		{Hash: "b", Status: domain.FlipFailed},
		{Hash: "c", Status: domain.FlipMissing, Attempts: 2},
	}

	e, err := validation.Resume(snap, h.deps(), h.options(domain.Timing{}))
	require.NoError(t, err)
	require.Equal(t, snap.RunID, e.RunID())

	before := e.View()
	got := make(map[domain.FlipHash]domain.FlipStatus)
	for _, f := range before.Short.Flips {
		got[f.Hash] = f.Status
	}
	want := map[domain.FlipHash]domain.FlipStatus{
		"a": domain.FlipUnresolved,
		"b": domain.FlipFailed,
		"c": domain.FlipUnresolved,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("statuses after resume (-want +got):\n%s", diff)
	}

	errc := run(t, e)
	v := waitFor(t, e, solvable(2))
	require.Equal(t, domain.AnswerLeft, v.Short.Flips[0].Answer)
	require.True(t, v.Short.Flips[0].Favorite)
	require.Equal(t, [][]domain.FlipHash{{"a", "c"}}, h.fetcher.fetched())
	require.Empty(t, h.keys.log())

	send(t, e, validation.Cancel{})
	require.NoError(t, waitResult(t, errc))
}

func TestResumedCommitIsNotResent(t *testing.T) {
	h := newHarness(t)
	h.fetcher.add(domain.LongSession, false, "l1")

	snap := baseSnapshot()
	snap.ShortCommitted = true
	snap.PublicKeySent = true
	snap.PrivateKeysSent = true

	e, err := validation.Resume(snap, h.deps(), h.options(domain.Timing{}))
	require.NoError(t, err)
	errc := run(t, e)

	send(t, e, validation.Submit{Session: domain.ShortSession})
	v := waitFor(t, e, func(v validation.View) bool { return v.Long.Solvable == 1 })
	require.Equal(t, validation.StateCommitted, v.Short.State)
	require.Equal(t, validation.PhaseLong, v.Phase)
	require.Empty(t, h.submitter.log())
	require.Empty(t, h.keys.log())

	send(t, e, validation.Cancel{})
	require.NoError(t, waitResult(t, errc))
}

func TestResumeWaitsForBroadcastCommit(t *testing.T) {
	h := newHarness(t)
	snap := baseSnapshot()
	snap.Short.State = string(validation.StateCommitting)
	snap.Short.CommitTx = "commit-tx"

	e, err := validation.Resume(snap, h.deps(), h.options(domain.Timing{}))
	require.NoError(t, err)
	errc := run(t, e)

	waitFor(t, e, func(v validation.View) bool { return v.Short.State == validation.StateCommitted })
	require.Equal(t, []string{"mined:commit-tx"}, h.submitter.log())

	send(t, e, validation.Cancel{})
	require.NoError(t, waitResult(t, errc))
}

func TestResumeInterruptedBroadcastNeedsRetry(t *testing.T) {
	h := newHarness(t)
	snap := baseSnapshot()
	snap.Short.State = string(validation.StateCommitting)

	e, err := validation.Resume(snap, h.deps(), h.options(domain.Timing{}))
	require.NoError(t, err)
	require.Equal(t, validation.StateFailed, e.View().Short.State)
	require.Equal(t, string(validation.StateCommitting), e.Snapshot().Short.FailedStep)
}

func TestResumeRejectsFinishedRun(t *testing.T) {
	snap := baseSnapshot()
	snap.Phase = string(validation.PhaseSucceeded)

	_, err := validation.Resume(snap, newHarness(t).deps(), validation.Options{})
	require.True(t, xerrors.Is(err, validation.ErrFinished))
}

func TestResumeRejectsForeignSnapshot(t *testing.T) {
	h := newHarness(t)
	snap := baseSnapshot()
	snap.Address = domain.Address{0x01}

	opts := h.options(domain.Timing{})
	opts.Address = domain.Address{0x02}
	_, err := validation.Resume(snap, h.deps(), opts)
	require.True(t, xerrors.Is(err, validation.ErrForeignSnapshot))

	opts.Address = snap.Address
	e, err := validation.Resume(snap, h.deps(), opts)
	require.NoError(t, err)
	require.Equal(t, snap.Address, e.Snapshot().Address)
}

func TestSnapshotsArePersisted(t *testing.T) {
	h := newHarness(t)
	h.fetcher.add(domain.ShortSession, false, "a")
	snaps := store.NewSnapshotFileStore(t.TempDir())
	deps := h.deps()
	deps.Snapshots = snaps

	timing := domain.Timing{ValidationStart: time.Now(), ShortSession: time.Hour, LongSession: time.Hour}
	e := validation.New(deps, h.options(timing))
	errc := run(t, e)

	waitFor(t, e, solvable(1))
	send(t, e, validation.AnswerFlip{Session: domain.ShortSession, Hash: "a", Answer: domain.AnswerRight})
	send(t, e, validation.Cancel{})
	require.NoError(t, waitResult(t, errc))

	snap, ok, err := snaps.LoadSnapshot(9)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, e.RunID(), snap.RunID)
	require.Equal(t, string(validation.PhaseCancelled), snap.Phase)
	require.Len(t, snap.Short.Flips, 1)
	require.Equal(t, domain.AnswerRight, snap.Short.Flips[0].Answer)
	require.Nil(t, snap.Short.Flips[0].Images)
	require.False(t, snap.SavedAt.IsZero())

	resumed, err := validation.Resume(snap, h.deps(), h.options(timing))
	require.NoError(t, err)
	require.Equal(t, validation.PhaseIdle, resumed.View().Phase)
	require.Equal(t, domain.AnswerRight, resumed.View().Short.Flips[0].Answer)
}
