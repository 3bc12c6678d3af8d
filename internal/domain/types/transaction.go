package types

// TxType enumerates chain transaction kinds.
type TxType uint32

const (
	SendTx TxType = iota
	ActivationTx
	InviteTx
	KillTx
	SubmitFlipTx
	SubmitAnswersHashTx
	SubmitShortAnswersTx
	SubmitLongAnswersTx
	EvidenceTx
	OnlineStatusTx
	KillInviteeTx
	ChangeGodAddressTx
	BurnTx
	ChangeProfileTx
	DeleteFlipTx
)

var txTypeNames = map[TxType]string{
	SendTx:               "send",
	ActivationTx:         "activation",
	InviteTx:             "invite",
	KillTx:               "kill",
	SubmitFlipTx:         "submit-flip",
	SubmitAnswersHashTx:  "submit-answers-hash",
	SubmitShortAnswersTx: "submit-short-answers",
	SubmitLongAnswersTx:  "submit-long-answers",
	EvidenceTx:           "evidence",
	OnlineStatusTx:       "online-status",
	KillInviteeTx:        "kill-invitee",
	ChangeGodAddressTx:   "change-god-address",
	BurnTx:               "burn",
	ChangeProfileTx:      "change-profile",
	DeleteFlipTx:         "delete-flip",
}

func (t TxType) String() string {
	if n, ok := txTypeNames[t]; ok {
		return n
	}
	return "unknown"
}

// TxRequest describes a transaction the node should build for signing.
type TxRequest struct {
	Type    TxType
	From    Address
	To      *Address
	Amount  string
	MaxFee  string
	Payload []byte
}
