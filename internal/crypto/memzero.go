package crypto

import (
	"crypto/ecdsa"
	"runtime"

	"ceremony/internal/util/memzero"
)

// Wipe zeroes the provided buffer. This is best-effort and aims to
// reduce the chance of the compiler eliding the write.
//
//go:noinline
func Wipe(b []byte) {
	memzero.Zero(b)
	runtime.KeepAlive(&b)
}

// ZeroKey clears the scalar of k in place.
func ZeroKey(k *ecdsa.PrivateKey) {
	if k == nil || k.D == nil {
		return
	}
	words := k.D.Bits()
	for i := range words {
		words[i] = 0
	}
	k.D.SetInt64(0)
}
