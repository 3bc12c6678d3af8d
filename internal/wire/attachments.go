package wire

import (
	"go.dedis.ch/protobuf"

	"ceremony/internal/domain"
)

// ShortAnswerAttachment reveals short-session answers.
type ShortAnswerAttachment struct {
	Answers []byte
	Rnd     uint64
}

// LongAnswerAttachment submits long-session answers together with the VRF
// proof, the private flip key and the commit salt.
type LongAnswerAttachment struct {
	Answers []byte
	Proof   []byte
	Key     []byte
	Salt    []byte
}

// FlipSubmitAttachment publishes a flip by content id and word pair index.
type FlipSubmitAttachment struct {
	Cid  []byte
	Pair uint32
}

// DeleteFlipAttachment withdraws a flip by content id.
type DeleteFlipAttachment struct {
	Cid []byte
}

// OnlineStatusAttachment toggles mining presence.
type OnlineStatusAttachment struct {
	Online bool
}

// EncodeAttachment serializes one of the attachment models.
func EncodeAttachment(a interface{}) ([]byte, error) {
	return protobuf.Encode(a)
}

// DecodeAttachment parses payload into out, which must be a pointer to one
// of the attachment models.
func DecodeAttachment(payload []byte, out interface{}) error {
	if err := protobuf.Decode(payload, out); err != nil {
		return &domain.DecodeError{What: "attachment", Err: err}
	}
	return nil
}
