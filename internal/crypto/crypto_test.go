package crypto_test

import (
	"crypto/ecdsa"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
)

const (
	testKeyHex     = "c85ef7d79691fe79573b1a7064c19c1a9819ebdbd1faaab1a8ec92344438aaf4"
	testAddressHex = "0xcd2a3d9f938e13cd947ec05abc7fe734df8dd826"
	testPubHex     = "040947751e3022ecf3016be03ec77ab0ce3c2662b4843898cb068d74f698ccc8ad75aa17564ae80a20bb044ee7a6d903e8e8df624b089c95d66a0570f051e5a05b"
)

func testKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	k, err := crypto.ParsePrivateKey(testKeyHex)
	require.NoError(t, err)
	return k
}

func TestHexToBytes(t *testing.T) {
	b, err := crypto.HexToBytes("0x0a0b")
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0x0b}, b)

	b, err = crypto.HexToBytes("abc")
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0xbc}, b)

	b, err = crypto.HexToBytes("")
	require.NoError(t, err)
	require.Empty(t, b)

	_, err = crypto.HexToBytes("0xzz")
	require.Error(t, err)
}

func TestBigToBytes(t *testing.T) {
	require.Equal(t, []byte{}, crypto.BigToBytes(nil))
	require.Equal(t, []byte{}, crypto.BigToBytes(big.NewInt(0)))
	require.Equal(t, []byte{0x01, 0x91}, crypto.BigToBytes(big.NewInt(0x191)))
	require.Equal(t, "0x0191", crypto.BytesToHex(crypto.BigToBytes(crypto.BytesToBig([]byte{0, 1, 0x91}))))
	require.Len(t, crypto.ScalarBytes(big.NewInt(1)), 32)
}

func TestAddressIsDeterministic(t *testing.T) {
	k := testKey(t)
	require.Equal(t, testAddressHex, hexAddr(crypto.AddressOf(&k.PublicKey)))
	require.Equal(t, testPubHex, hex.EncodeToString(crypto.PublicKeyBytes(&k.PublicKey)))
	require.Equal(t, testKeyHex, hex.EncodeToString(crypto.PrivateKeyBytes(k)))

	again := testKey(t)
	require.Equal(t, crypto.AddressOf(&k.PublicKey), crypto.AddressOf(&again.PublicKey))
}

func TestSignRecoverRoundTrip(t *testing.T) {
	k := testKey(t)
	digest := crypto.Keccak256([]byte("hello"))

	sig, err := crypto.Sign(digest, k)
	require.NoError(t, err)
	require.Len(t, sig, crypto.SignatureLength)
	require.Equal(t,
		"c47294f1bdf2e1f38d4d276157b8a04360b268d267339146f68262f47ae7a7af"+
			"7d229dd323a26da4fbd2a20bbde5cfc623823af7c7f3145854a313990507a82900",
		hex.EncodeToString(sig))

	addr, err := crypto.RecoverAddress(digest, sig)
	require.NoError(t, err)
	require.Equal(t, testAddressHex, hexAddr(addr))

	viaData, err := crypto.SignData([]byte("hello"), k)
	require.NoError(t, err)
	require.Equal(t, sig, viaData)

	_, err = crypto.RecoverAddress(digest, sig[:64])
	require.Error(t, err)
}

func TestParsePrivateKeyRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "0x1234", "nothex", testKeyHex + "00"} {
		_, err := crypto.ParsePrivateKey(in)
		var kd *domain.KeyDerivationError
		require.True(t, xerrors.As(err, &kd), "input %q", in)
	}
}

func TestDeriveFlipKeyKnownValues(t *testing.T) {
	k := testKey(t)

	pub, err := crypto.DeriveFlipKey(k, 1, crypto.PublicFlipKey)
	require.NoError(t, err)
	require.Equal(t,
		"b2c74ed10357175f55465d338650f1a8d218101f65acad538db33cb68c187b6a",
		hex.EncodeToString(crypto.PrivateKeyBytes(pub)))
	require.Equal(t, "0xb427203566ab21328109f49b28344e4b89926444", hexAddr(crypto.AddressOf(&pub.PublicKey)))

	priv, err := crypto.DeriveFlipKey(k, 1, crypto.PrivateFlipKey)
	require.NoError(t, err)
	require.Equal(t,
		"c2f514452ef097a662752803d5edd04ce3ba7d87668794d56a68cabc8f63034d",
		hex.EncodeToString(crypto.PrivateKeyBytes(priv)))
}

func TestDeriveFlipKeyIsPure(t *testing.T) {
	k := testKey(t)
	for epoch := domain.Epoch(0); epoch < 5; epoch++ {
		a, err := crypto.DeriveFlipKey(k, epoch, crypto.PublicFlipKey)
		require.NoError(t, err)
		b, err := crypto.DeriveFlipKey(k, epoch, crypto.PublicFlipKey)
		require.NoError(t, err)
		require.Equal(t, crypto.PrivateKeyBytes(a), crypto.PrivateKeyBytes(b))

		c, err := crypto.DeriveFlipKey(k, epoch, crypto.PrivateFlipKey)
		require.NoError(t, err)
		require.NotEqual(t, crypto.PrivateKeyBytes(a), crypto.PrivateKeyBytes(c))
	}

	_, err := crypto.DeriveFlipKey(nil, 1, crypto.PublicFlipKey)
	require.Error(t, err)
}

func TestShortAnswersSalt(t *testing.T) {
	salt, err := crypto.ShortAnswersSalt(testKey(t), 1)
	require.NoError(t, err)
	require.Equal(t,
		"713e70bf20b2a2847bb0ff63ae71c8b91e8a7ff85d74268950a722c872eb1e0d",
		hex.EncodeToString(salt))
}

func TestECIESRoundTrip(t *testing.T) {
	k := testKey(t)
	msg := []byte("flip key material")

	ct, err := crypto.Encrypt(&k.PublicKey, msg)
	require.NoError(t, err)
	require.NotEqual(t, msg, ct)

	pt, err := crypto.Decrypt(k, ct)
	require.NoError(t, err)
	require.Equal(t, msg, pt)

	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	_, err = crypto.Decrypt(other, ct)
	require.Error(t, err)
}

func TestVRFEvaluateVerifies(t *testing.T) {
	k := testKey(t)
	seed := []byte("words seed")

	index, proof, err := crypto.VRFEvaluate(k, seed)
	require.NoError(t, err)
	require.Len(t, proof, crypto.VRFProofLength)

	got, err := crypto.VRFProofToHash(&k.PublicKey, seed, proof)
	require.NoError(t, err)
	require.Equal(t, index, got)

	// The index is a function of key and seed only.
	index2, proof2, err := crypto.VRFEvaluate(k, seed)
	require.NoError(t, err)
	require.Equal(t, index, index2)
	require.NotEqual(t, proof, proof2)
	require.Equal(t, crypto.VRFRandom(index), crypto.VRFRandom(index2))
}

// Known answers for testKeyHex, computed independently with sha512 H1/H2
// try-and-increment and index = sha256(VRF point).
func TestVRFKnownAnswers(t *testing.T) {
	k := testKey(t)
	cases := []struct {
		seed  string
		index string
		rnd   uint64
	}{
		{"words seed", "729f2600feea447fe1b1210ec974e28e35bc1b91c71b810a2f2377a3e8feb493", 9170713117878296434},
		{"", "2995ae483fe70e967b45fea5bab3e67044fd245ec0723362173688a31c8d1a69", 10812834014351496489},
	}
	for _, tc := range cases {
		index, _, err := crypto.VRFEvaluate(k, []byte(tc.seed))
		require.NoError(t, err)
		require.Equal(t, tc.index, hex.EncodeToString(index[:]), tc.seed)
		require.Equal(t, tc.rnd, crypto.VRFRandom(index), tc.seed)
	}

	// A proof built outside this package with a fixed nonce.
	proof, err := hex.DecodeString("2d4d50bff77b61872a5850c309903caeda21e96f8d618d97a71082c16ec2e38b" +
		"e9bd082b51334e455cc5790262c20fa81600e49ae508b078e0ed14d4a9b30112" +
		"04ae5d57d4b6aebf155935a7451b9488457d178c8fb765fd7eb2095f53f5d267" +
		"4315ce43dace12cac5864ca87f7a43207c0c11aa23cd2cf77d10504fc307547d08")
	require.NoError(t, err)
	index, err := crypto.VRFProofToHash(&k.PublicKey, []byte("words seed"), proof)
	require.NoError(t, err)
	require.Equal(t, cases[0].index, hex.EncodeToString(index[:]))
}

func TestVRFRejectsTampering(t *testing.T) {
	k := testKey(t)
	_, proof, err := crypto.VRFEvaluate(k, []byte("seed"))
	require.NoError(t, err)

	_, err = crypto.VRFProofToHash(&k.PublicKey, []byte("other seed"), proof)
	require.ErrorIs(t, err, crypto.ErrInvalidVRF)

	bad := append([]byte(nil), proof...)
	bad[3] ^= 0xff
	_, err = crypto.VRFProofToHash(&k.PublicKey, []byte("seed"), bad)
	require.ErrorIs(t, err, crypto.ErrInvalidVRF)

	_, err = crypto.VRFProofToHash(&k.PublicKey, []byte("seed"), proof[:10])
	require.ErrorIs(t, err, crypto.ErrInvalidVRF)
}

func TestVRFRandomIsLittleEndian(t *testing.T) {
	var idx [32]byte
	idx[0] = 0x01
	idx[1] = 0x02
	require.Equal(t, uint64(0x0201), crypto.VRFRandom(idx))
}

func TestWipe(t *testing.T) {
	b := []byte{1, 2, 3}
	crypto.Wipe(b)
	require.Equal(t, []byte{0, 0, 0}, b)

	k, err := crypto.GenerateKey()
	require.NoError(t, err)
	crypto.ZeroKey(k)
	require.Zero(t, k.D.Sign())
}

func hexAddr(a domain.Address) string { return "0x" + hex.EncodeToString(a[:]) }
