package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ceremony/internal/domain"
	"ceremony/internal/store"
)

func TestKey_SaveLoad_OK(t *testing.T) {
	home := t.TempDir()
	var ks domain.KeyStore = store.NewKeyFileStore(home)
	require.False(t, ks.Exists())

	key := []byte{1, 2, 3, 4}
	require.NoError(t, ks.SaveKey("pass", key))
	require.True(t, ks.Exists())
	require.Equal(t, []byte{1, 2, 3, 4}, key)

	got, err := ks.LoadKey("pass")
	require.NoError(t, err)
	require.Equal(t, key, got)
}

func TestKey_WrongPassphrase_Fails(t *testing.T) {
	ks := store.NewKeyFileStore(t.TempDir())
	require.NoError(t, ks.SaveKey("correct", []byte{9}))

	_, err := ks.LoadKey("wrong")
	require.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func TestKey_MissingFile(t *testing.T) {
	_, err := store.NewKeyFileStore(t.TempDir()).LoadKey("pass")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSnapshot_SaveLoadDelete(t *testing.T) {
	home := t.TempDir()
	var ss domain.SnapshotStore = store.NewSnapshotFileStore(home)

	_, ok, err := ss.LoadSnapshot(5)
	require.NoError(t, err)
	require.False(t, ok)

	start := time.Date(2026, 1, 2, 15, 30, 0, 0, time.UTC)
	snap := domain.Snapshot{
		RunID: "run-1",
		Epoch: 5,
		Timing: domain.Timing{
			ValidationStart: start,
			ShortSession:    2 * time.Minute,
			LongSession:     30 * time.Minute,
		},
		Phase: "short",
		Short: domain.SessionSnapshot{
			Hashes:  []domain.FlipHash{"a", "b"},
			Display: []domain.FlipHash{"a", "b"},
			Flips: []domain.Flip{
				{Hash: "a", Status: domain.FlipDecoded, Answer: domain.AnswerLeft, Images: [][]byte{{1}}},
				{Hash: "b", Status: domain.FlipFailed},
			},
			State:    "committed",
			CommitTx: "0xabc",
		},
		ShortCommitted: true,
		PublicKeySent:  true,
	}
	require.NoError(t, ss.SaveSnapshot(snap))

	got, ok, err := ss.LoadSnapshot(5)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, got.SavedAt.IsZero())

	// images are never persisted
	snap.Short.Flips[0].Images = nil
	got.SavedAt = time.Time{}
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, ss.DeleteSnapshot(5))
	_, ok, err = ss.LoadSnapshot(5)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, ss.DeleteSnapshot(5))
}

func TestSnapshot_NoTempFilesLeft(t *testing.T) {
	home := t.TempDir()
	ss := store.NewSnapshotFileStore(home)
	for i := 0; i < 3; i++ {
		require.NoError(t, ss.SaveSnapshot(domain.Snapshot{Epoch: 1, Phase: "short"}))
	}
	entries, err := os.ReadDir(filepath.Join(home, "snapshots"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFlipCache_PutGetPrune(t *testing.T) {
	c, err := store.OpenFlipCache(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	var fc domain.FlipCache = c
	ct := domain.FlipCiphertext{PublicHex: "0x01", PrivateHex: "0x02"}

	_, ok, err := fc.GetFlip(3, "h")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, fc.PutFlip(3, "h", ct))
	require.NoError(t, fc.PutFlip(4, "h", domain.FlipCiphertext{PublicHex: "0x03"}))

	got, ok, err := fc.GetFlip(3, "h")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ct, got)

	_, ok, err = fc.GetFlip(3, "other")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, fc.PruneBefore(4))
	_, ok, err = fc.GetFlip(3, "h")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = fc.GetFlip(4, "h")
	require.NoError(t, err)
	require.True(t, ok)
}
