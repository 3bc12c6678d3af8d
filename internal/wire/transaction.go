package wire

import (
	"crypto/ecdsa"

	"go.dedis.ch/protobuf"
	"golang.org/x/xerrors"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
)

// TxData is the signed body of a transaction.
type TxData struct {
	Nonce   uint32
	Epoch   uint32
	Type    uint32
	To      []byte
	Amount  []byte
	MaxFee  []byte
	Tips    []byte
	Payload []byte
}

// Transaction is TxData plus its 65-byte recoverable signature.
type Transaction struct {
	Data      TxData
	Signature []byte
}

// DecodeTransaction parses an encoded transaction as returned by bcn_getRawTx.
func DecodeTransaction(raw []byte) (*Transaction, error) {
	var tx Transaction
	if err := protobuf.Decode(raw, &tx); err != nil {
		return nil, &domain.DecodeError{What: "transaction", Err: err}
	}
	return &tx, nil
}

// Encode serializes the whole transaction including its signature.
func (tx *Transaction) Encode() ([]byte, error) {
	return protobuf.Encode(tx)
}

// SigningHash is keccak256 of the encoded TxData.
func (tx *Transaction) SigningHash() ([]byte, error) {
	data, err := protobuf.Encode(&tx.Data)
	if err != nil {
		return nil, xerrors.Errorf("encode tx data: %w", err)
	}
	return crypto.Keccak256(data), nil
}

// Sign replaces the signature with one made by key.
func (tx *Transaction) Sign(key *ecdsa.PrivateKey) error {
	digest, err := tx.SigningHash()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return xerrors.Errorf("sign tx: %w", err)
	}
	tx.Signature = sig
	return nil
}

// Sender recovers the signer's address.
func (tx *Transaction) Sender() (domain.Address, error) {
	digest, err := tx.SigningHash()
	if err != nil {
		return domain.Address{}, err
	}
	return crypto.RecoverAddress(digest, tx.Signature)
}

// Hash is keccak256 of the full encoding; the node reports the same value
// from bcn_sendRawTx.
func (tx *Transaction) Hash() (domain.TxHash, error) {
	raw, err := tx.Encode()
	if err != nil {
		return "", err
	}
	return domain.TxHash(crypto.BytesToHex(crypto.Keccak256(raw))), nil
}
