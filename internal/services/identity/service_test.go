package identity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
	"ceremony/internal/services/identity"
	"ceremony/internal/store"
)

const (
	testKeyHex = "c85ef7d79691fe79573b1a7064c19c1a9819ebdbd1faaab1a8ec92344438aaf4"
	strongPass = "Correct-Horse-42"
)

func TestImportAndUnlock(t *testing.T) {
	svc := identity.New(store.NewKeyFileStore(t.TempDir()))

	addr, err := svc.ImportKey(strongPass, "0x"+testKeyHex)
	require.NoError(t, err)
	require.Equal(t, "0xcd2a3d9f938e13cd947ec05abc7fe734df8dd826", hexAddr(addr))

	key, err := svc.UnlockKey(strongPass)
	require.NoError(t, err)
	require.Equal(t, addr, crypto.AddressOf(&key.PublicKey))

	again, err := svc.Address(strongPass)
	require.NoError(t, err)
	require.Equal(t, addr, again)
}

func TestImportRejectsWeakPassphrase(t *testing.T) {
	svc := identity.New(store.NewKeyFileStore(t.TempDir()))
	_, err := svc.ImportKey("short", testKeyHex)
	require.ErrorIs(t, err, identity.ErrWeakPassphrase)
}

func TestImportRejectsMalformedKey(t *testing.T) {
	ks := store.NewKeyFileStore(t.TempDir())
	svc := identity.New(ks)

	_, err := svc.ImportKey(strongPass, "0x1234")
	var kd *domain.KeyDerivationError
	require.ErrorAs(t, err, &kd)
	require.False(t, ks.Exists())
}

func TestUnlockWrongPassphrase(t *testing.T) {
	svc := identity.New(store.NewKeyFileStore(t.TempDir()))
	_, err := svc.ImportKey(strongPass, testKeyHex)
	require.NoError(t, err)

	_, err = svc.UnlockKey("Wrong-Horse-42!")
	require.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func hexAddr(a domain.Address) string { return strings.ToLower(a.Hex()) }
