package flip

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/xerrors"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
)

const (
	// ImagesPerFlip is the number of images in a decoded flip.
	ImagesPerFlip = 4
	halfImages    = ImagesPerFlip / 2
)

// Decoded is a flip's plaintext.
type Decoded struct {
	Images [][]byte
	Orders [2][]int
}

// Decode turns a ciphertext and the flip's key pair into images and orders.
// It recovers from panics in the underlying decoders so a corrupt flip can
// never take the caller down.
func Decode(ct domain.FlipCiphertext, keys domain.FlipKeyPair) (out Decoded, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.DecodeError{What: "flip", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	pubKey, err := crypto.ParsePrivateKey(keys.PublicKey)
	if err != nil {
		return Decoded{}, &domain.DecodeError{What: "public flip key", Err: err}
	}
	privKey, err := crypto.ParsePrivateKey(keys.PrivateKey)
	if err != nil {
		return Decoded{}, &domain.DecodeError{What: "private flip key", Err: err}
	}
	pubCT, err := crypto.HexToBytes(ct.PublicHex)
	if err != nil {
		return Decoded{}, &domain.DecodeError{What: "public half", Err: err}
	}
	privCT, err := crypto.HexToBytes(ct.PrivateHex)
	if err != nil {
		return Decoded{}, &domain.DecodeError{What: "private half", Err: err}
	}
	return DecodeHalves(pubCT, privCT, pubKey, privKey)
}

// DecodeHalves decrypts and decodes raw ciphertext halves.
func DecodeHalves(pubCT, privCT []byte, pubKey, privKey *ecdsa.PrivateKey) (Decoded, error) {
	pubPlain, err := crypto.Decrypt(pubKey, pubCT)
	if err != nil {
		return Decoded{}, &domain.DecodeError{What: "public half", Err: err}
	}
	privPlain, err := crypto.Decrypt(privKey, privCT)
	if err != nil {
		return Decoded{}, &domain.DecodeError{What: "private half", Err: err}
	}

	var pub [][][]byte
	if err := rlp.DecodeBytes(pubPlain, &pub); err != nil {
		return Decoded{}, &domain.DecodeError{What: "public half", Err: err}
	}
	if len(pub) < 1 || len(pub[0]) != halfImages {
		return Decoded{}, &domain.DecodeError{What: "public half", Err: xerrors.New("want two images")}
	}

	var priv []rlp.RawValue
	if err := rlp.DecodeBytes(privPlain, &priv); err != nil {
		return Decoded{}, &domain.DecodeError{What: "private half", Err: err}
	}
	if len(priv) < 2 {
		return Decoded{}, &domain.DecodeError{What: "private half", Err: xerrors.New("want images and orders")}
	}
	var privImages [][]byte
	if err := rlp.DecodeBytes(priv[0], &privImages); err != nil {
		return Decoded{}, &domain.DecodeError{What: "private images", Err: err}
	}
	if len(privImages) != halfImages {
		return Decoded{}, &domain.DecodeError{What: "private images", Err: xerrors.New("want two images")}
	}
	var rawOrders [][][]byte
	if err := rlp.DecodeBytes(priv[1], &rawOrders); err != nil {
		return Decoded{}, &domain.DecodeError{What: "orders", Err: err}
	}
	if len(rawOrders) != 2 {
		return Decoded{}, &domain.DecodeError{What: "orders", Err: xerrors.New("want two orders")}
	}

	out := Decoded{Images: make([][]byte, 0, ImagesPerFlip)}
	out.Images = append(out.Images, pub[0]...)
	out.Images = append(out.Images, privImages...)
	for side, raw := range rawOrders {
		order, err := parseOrder(raw)
		if err != nil {
			return Decoded{}, &domain.DecodeError{What: "orders", Err: err}
		}
		out.Orders[side] = order
	}
	return out, nil
}

func parseOrder(raw [][]byte) ([]int, error) {
	order := make([]int, len(raw))
	for i, b := range raw {
		if len(b) > 1 {
			return nil, xerrors.Errorf("order index %d: %d bytes", i, len(b))
		}
		idx := 0
		if len(b) == 1 {
			idx = int(b[0])
		}
		if idx >= ImagesPerFlip {
			return nil, xerrors.Errorf("order index %d out of range: %d", i, idx)
		}
		order[i] = idx
	}
	return order, nil
}

// Seal encodes and encrypts a flip for publication. pub and priv are the
// author's public and private flip keys.
func Seal(images [ImagesPerFlip][]byte, orders [2][]int, pub, priv *ecdsa.PublicKey) (domain.FlipCiphertext, error) {
	pubPlain, err := rlp.EncodeToBytes([][][]byte{{images[0], images[1]}})
	if err != nil {
		return domain.FlipCiphertext{}, xerrors.Errorf("encode public half: %w", err)
	}
	encOrders := make([][]uint, 2)
	for side, order := range orders {
		encOrders[side] = make([]uint, len(order))
		for i, idx := range order {
			encOrders[side][i] = uint(idx)
		}
	}
	privPlain, err := rlp.EncodeToBytes([]interface{}{
		[][]byte{images[2], images[3]},
		encOrders,
	})
	if err != nil {
		return domain.FlipCiphertext{}, xerrors.Errorf("encode private half: %w", err)
	}

	pubCT, err := crypto.Encrypt(pub, pubPlain)
	if err != nil {
		return domain.FlipCiphertext{}, xerrors.Errorf("encrypt public half: %w", err)
	}
	privCT, err := crypto.Encrypt(priv, privPlain)
	if err != nil {
		return domain.FlipCiphertext{}, xerrors.Errorf("encrypt private half: %w", err)
	}
	return domain.FlipCiphertext{
		PublicHex:  crypto.BytesToHex(pubCT),
		PrivateHex: crypto.BytesToHex(privCT),
	}, nil
}
