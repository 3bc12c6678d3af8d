package crypto

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/xerrors"
)

// VRFProofLength is s(32) || t(32) || point(65).
const VRFProofLength = 32 + 32 + 65

var (
	// ErrInvalidVRF is returned when a proof does not verify.
	ErrInvalidVRF = xerrors.New("invalid VRF proof")
	// errHashToCurve is returned if no curve point was found for a message.
	errHashToCurve = xerrors.New("hash to curve: no point found")
)

// hashToCurve maps m to a point by try-and-increment: the first 32 bytes of
// sha512(i || m) are read as a compressed x coordinate until one decodes.
func hashToCurve(m []byte) (x, y *big.Int, err error) {
	byteLen := (ethcrypto.S256().Params().BitSize + 7) >> 3
	h := sha512.New()
	var ctr [4]byte
	for i := uint32(0); i < 100; i++ {
		h.Reset()
		binary.BigEndian.PutUint32(ctr[:], i)
		h.Write(ctr[:])
		h.Write(m)
		enc := h.Sum([]byte{0x02})
		pub, err := ethcrypto.DecompressPubkey(enc[:byteLen+1])
		if err == nil {
			return pub.X, pub.Y, nil
		}
	}
	return nil, nil, errHashToCurve
}

// hashToScalar maps m to an integer in [1, n-1] by discarding out-of-range
// candidates. Each candidate is the first 32 bytes of sha512(i || m).
func hashToScalar(m []byte) *big.Int {
	params := ethcrypto.S256().Params()
	byteLen := (params.BitSize + 7) >> 3
	limit := new(big.Int).Sub(params.N, one)
	h := sha512.New()
	var ctr [4]byte
	for i := uint32(0); ; i++ {
		h.Reset()
		binary.BigEndian.PutUint32(ctr[:], i)
		h.Write(ctr[:])
		h.Write(m)
		k := new(big.Int).SetBytes(h.Sum(nil)[:byteLen])
		if k.Cmp(limit) == -1 {
			return k.Add(k, one)
		}
	}
}

func marshalPoint(x, y *big.Int) []byte {
	out := make([]byte, 0, 65)
	out = append(out, 0x04)
	out = append(out, ScalarBytes(x)...)
	return append(out, ScalarBytes(y)...)
}

func challenge(pubX, pubY, hx, hy *big.Int, vrf []byte, rgx, rgy, rhx, rhy *big.Int) *big.Int {
	params := ethcrypto.S256().Params()
	var b bytes.Buffer
	b.Write(marshalPoint(params.Gx, params.Gy))
	b.Write(marshalPoint(hx, hy))
	b.Write(marshalPoint(pubX, pubY))
	b.Write(vrf)
	b.Write(marshalPoint(rgx, rgy))
	b.Write(marshalPoint(rhx, rhy))
	return hashToScalar(b.Bytes())
}

// VRFEvaluate returns the VRF index of m under key and a proof that
// VRFProofToHash accepts.
func VRFEvaluate(key *ecdsa.PrivateKey, m []byte) (index [32]byte, proof []byte, err error) {
	curve := ethcrypto.S256()
	n := curve.Params().N

	nonce, err := ethcrypto.GenerateKey()
	if err != nil {
		return index, nil, err
	}
	r := ScalarBytes(nonce.D)

	hx, hy, err := hashToCurve(m)
	if err != nil {
		return index, nil, err
	}

	vx, vy := curve.ScalarMult(hx, hy, ScalarBytes(key.D))
	vrf := marshalPoint(vx, vy)

	rgx, rgy := curve.ScalarBaseMult(r)
	rhx, rhy := curve.ScalarMult(hx, hy, r)
	s := challenge(key.X, key.Y, hx, hy, vrf, rgx, rgy, rhx, rhy)

	// t = r - s*k mod n
	t := new(big.Int).Mul(s, key.D)
	t.Sub(nonce.D, t)
	t.Mod(t, n)
	ZeroKey(nonce)

	proof = make([]byte, 0, VRFProofLength)
	proof = append(proof, ScalarBytes(s)...)
	proof = append(proof, ScalarBytes(t)...)
	proof = append(proof, vrf...)
	return sha256.Sum256(vrf), proof, nil
}

// VRFProofToHash checks proof for m under pub and returns the index.
func VRFProofToHash(pub *ecdsa.PublicKey, m, proof []byte) (index [32]byte, err error) {
	if len(proof) != VRFProofLength {
		return index, ErrInvalidVRF
	}
	s := proof[0:32]
	t := proof[32:64]
	vrf := proof[64:]

	v, err := ethcrypto.UnmarshalPubkey(vrf)
	if err != nil {
		return index, ErrInvalidVRF
	}
	curve := ethcrypto.S256()

	// [t]G + [s]([k]G) = [r]G
	tgx, tgy := curve.ScalarBaseMult(t)
	kgx, kgy := curve.ScalarMult(pub.X, pub.Y, s)
	rgx, rgy := curve.Add(tgx, tgy, kgx, kgy)

	hx, hy, err := hashToCurve(m)
	if err != nil {
		return index, err
	}
	// [t]H + [s]VRF = [r]H
	thx, thy := curve.ScalarMult(hx, hy, t)
	svx, svy := curve.ScalarMult(v.X, v.Y, s)
	rhx, rhy := curve.Add(thx, thy, svx, svy)

	h2 := challenge(pub.X, pub.Y, hx, hy, vrf, rgx, rgy, rhx, rhy)
	if !hmac.Equal(s, ScalarBytes(h2)) {
		return index, ErrInvalidVRF
	}
	return sha256.Sum256(vrf), nil
}

// VRFRandom reads the reveal random value from a VRF index.
func VRFRandom(index [32]byte) uint64 {
	return binary.LittleEndian.Uint64(index[:8])
}
