package keypackage_test

import (
	"crypto/ecdsa"
	"testing"

	"github.com/stretchr/testify/require"

	"ceremony/internal/crypto"
	"ceremony/internal/protocol/keypackage"
)

func genKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	k, err := crypto.GenerateKey()
	require.NoError(t, err)
	return k
}

func TestBuildAndOpen(t *testing.T) {
	long := genKey(t)
	pubFlip, err := crypto.DeriveFlipKey(long, 7, crypto.PublicFlipKey)
	require.NoError(t, err)
	privFlip, err := crypto.DeriveFlipKey(long, 7, crypto.PrivateFlipKey)
	require.NoError(t, err)

	alice, bob, eve := genKey(t), genKey(t), genKey(t)
	candidates := [][]byte{
		crypto.PublicKeyBytes(&alice.PublicKey),
		[]byte("not a key"),
		crypto.PublicKeyBytes(&bob.PublicKey),
	}

	msg, n, err := keypackage.Build(7, privFlip, &pubFlip.PublicKey, candidates)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, uint32(7), msg.Epoch)

	for _, who := range []*ecdsa.PrivateKey{alice, bob} {
		got, err := keypackage.Open(msg.Data, pubFlip, who)
		require.NoError(t, err)
		require.Equal(t, crypto.PrivateKeyBytes(privFlip), crypto.PrivateKeyBytes(got))
	}

	_, err = keypackage.Open(msg.Data, pubFlip, eve)
	require.ErrorIs(t, err, keypackage.ErrNotRecipient)

	_, err = keypackage.Open(msg.Data, eve, alice)
	require.Error(t, err)
}

func TestBuildWithoutCandidates(t *testing.T) {
	net := genKey(t)
	for _, candidates := range [][][]byte{nil, {[]byte("not a key"), {}}} {
		msg, n, err := keypackage.Build(1, genKey(t), &net.PublicKey, candidates)
		require.ErrorIs(t, err, keypackage.ErrNoCandidates)
		require.Zero(t, n)
		require.Empty(t, msg.Data)
	}
}

func TestOpenSingleCandidate(t *testing.T) {
	net, only := genKey(t), genKey(t)
	priv := genKey(t)
	msg, n, err := keypackage.Build(1, priv, &net.PublicKey, [][]byte{crypto.PublicKeyBytes(&only.PublicKey)})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := keypackage.Open(msg.Data, net, only)
	require.NoError(t, err)
	require.Equal(t, crypto.PrivateKeyBytes(priv), crypto.PrivateKeyBytes(got))
}

func TestPublicKeyMessage(t *testing.T) {
	k := genKey(t)
	msg := keypackage.PublicKeyMessage(3, k)
	require.Equal(t, uint32(3), msg.Epoch)
	require.Equal(t, crypto.PrivateKeyBytes(k), msg.Data)
}
