package wire_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ceremony/internal/crypto"
	"ceremony/internal/domain"
	"ceremony/internal/wire"
)

const testKeyHex = "c85ef7d79691fe79573b1a7064c19c1a9819ebdbd1faaab1a8ec92344438aaf4"

func TestTransactionEncodingKeepsEmptyFields(t *testing.T) {
	tx := wire.Transaction{Data: wire.TxData{Nonce: 1, Epoch: 2, Type: uint32(domain.SubmitAnswersHashTx)}}

	raw, err := tx.Encode()
	require.NoError(t, err)

	data := []byte{
		0x08, 0x01, // nonce
		0x10, 0x02, // epoch
		0x18, 0x05, // type
		0x22, 0x00, // to
		0x2a, 0x00, // amount
		0x32, 0x00, // maxFee
		0x3a, 0x00, // tips
		0x42, 0x00, // payload
	}
	want := append([]byte{0x0a, byte(len(data))}, data...)
	want = append(want, 0x12, 0x00) // signature
	require.Equal(t, want, raw)
}

func TestTransactionSignAndRecover(t *testing.T) {
	key, err := crypto.ParsePrivateKey(testKeyHex)
	require.NoError(t, err)

	tx := wire.Transaction{Data: wire.TxData{
		Nonce:   7,
		Epoch:   1,
		Type:    uint32(domain.SubmitShortAnswersTx),
		Amount:  crypto.BigToBytes(nil),
		Payload: []byte{1, 2, 3},
	}}
	require.NoError(t, tx.Sign(key))
	require.Len(t, tx.Signature, crypto.SignatureLength)

	sender, err := tx.Sender()
	require.NoError(t, err)
	require.Equal(t, crypto.AddressOf(&key.PublicKey), sender)

	raw, err := tx.Encode()
	require.NoError(t, err)

	decoded, err := wire.DecodeTransaction(raw)
	require.NoError(t, err)
	require.Equal(t, tx.Data.Nonce, decoded.Data.Nonce)
	require.Equal(t, tx.Data.Payload, decoded.Data.Payload)
	require.Equal(t, tx.Signature, decoded.Signature)

	again, err := decoded.Encode()
	require.NoError(t, err)
	require.Equal(t, raw, again)

	h1, err := tx.Hash()
	require.NoError(t, err)
	h2, err := decoded.Hash()
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestTamperedTransactionRecoversOtherSender(t *testing.T) {
	key, err := crypto.ParsePrivateKey(testKeyHex)
	require.NoError(t, err)

	tx := wire.Transaction{Data: wire.TxData{Nonce: 1, Epoch: 1}}
	require.NoError(t, tx.Sign(key))
	tx.Data.Nonce = 2

	sender, err := tx.Sender()
	if err == nil {
		require.NotEqual(t, crypto.AddressOf(&key.PublicKey), sender)
	}
}

func TestDecodeTransactionRejectsGarbage(t *testing.T) {
	_, err := wire.DecodeTransaction([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
	require.True(t, domain.IsDecode(err))
}

func TestAttachmentsEncode(t *testing.T) {
	raw, err := wire.EncodeAttachment(&wire.ShortAnswerAttachment{Answers: []byte{1, 0x91}, Rnd: 300})
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0x02, 0x01, 0x91, 0x10, 0xac, 0x02}, raw)

	var short wire.ShortAnswerAttachment
	require.NoError(t, wire.DecodeAttachment(raw, &short))
	require.Equal(t, []byte{1, 0x91}, short.Answers)
	require.Equal(t, uint64(300), short.Rnd)

	raw, err = wire.EncodeAttachment(&wire.OnlineStatusAttachment{Online: true})
	require.NoError(t, err)
	require.Equal(t, []byte{0x08, 0x01}, raw)

	raw, err = wire.EncodeAttachment(&wire.LongAnswerAttachment{Answers: []byte{9}, Key: []byte{1, 2}})
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0x01, 0x09, 0x12, 0x00, 0x1a, 0x02, 0x01, 0x02, 0x22, 0x00}, raw)

	var long wire.LongAnswerAttachment
	require.NoError(t, wire.DecodeAttachment(raw, &long))
	require.Equal(t, []byte{1, 2}, long.Key)
	require.Empty(t, long.Proof)
}

func TestFlipKeyMessageSignature(t *testing.T) {
	key, err := crypto.ParsePrivateKey(testKeyHex)
	require.NoError(t, err)

	msg := wire.FlipKeyMessage{Epoch: 3, Data: []byte("public flip key")}
	args, err := msg.SignedArgs(key)
	require.NoError(t, err)
	require.Equal(t, domain.Epoch(3), args.Epoch)

	signer, err := wire.VerifyKeyArgs(args)
	require.NoError(t, err)
	require.Equal(t, crypto.AddressOf(&key.PublicKey), signer)

	args.Epoch = 4
	signer, err = wire.VerifyKeyArgs(args)
	if err == nil {
		require.NotEqual(t, crypto.AddressOf(&key.PublicKey), signer)
	}
}

func TestPrivateKeysPackageRoundTrip(t *testing.T) {
	p := wire.PrivateKeysPackage{Data: [][]byte{{1, 2}, {3}}}
	raw, err := p.Encode()
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0x02, 0x01, 0x02, 0x0a, 0x01, 0x03}, raw)

	got, err := wire.DecodePrivateKeysPackage(raw)
	require.NoError(t, err)
	require.Equal(t, p.Data, got.Data)
}
