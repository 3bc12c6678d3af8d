package domain

import (
	interfaces "ceremony/internal/domain/interfaces"
	types "ceremony/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Address           = types.Address
	Epoch             = types.Epoch
	FlipHash          = types.FlipHash
	TxHash            = types.TxHash
	SessionKind       = types.SessionKind
	FlipStatus        = types.FlipStatus
	Answer            = types.Answer
	Grade             = types.Grade
	FlipHashInfo      = types.FlipHashInfo
	Flip              = types.Flip
	FlipUpdate        = types.FlipUpdate
	Timing            = types.Timing
	SessionSnapshot   = types.SessionSnapshot
	Snapshot          = types.Snapshot
	TxType            = types.TxType
	TxRequest         = types.TxRequest
	FlipCiphertext    = types.FlipCiphertext
	FlipKeyPair       = types.FlipKeyPair
	FlipWords         = types.FlipWords
	FlipWordPair      = types.FlipWordPair
	SyncStatus        = types.SyncStatus
	Identity          = types.Identity
	EpochInfo         = types.EpochInfo
	CeremonyIntervals = types.CeremonyIntervals
	TxReceipt         = types.TxReceipt
	RawTxArgs         = types.RawTxArgs
	EncryptionKeyArgs = types.EncryptionKeyArgs
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	FlipNode           = interfaces.FlipNode
	KeyExchangeNode    = interfaces.KeyExchangeNode
	TxNode             = interfaces.TxNode
	ChainNode          = interfaces.ChainNode
	NodeClient         = interfaces.NodeClient
	KeyStore           = interfaces.KeyStore
	SnapshotStore      = interfaces.SnapshotStore
	FlipCache          = interfaces.FlipCache
	IdentityService    = interfaces.IdentityService
	TransactionService = interfaces.TransactionService
	FlipFetcher        = interfaces.FlipFetcher
	KeyExchanger       = interfaces.KeyExchanger
	AnswerSubmitter    = interfaces.AnswerSubmitter
)

const (
	ShortSession = types.ShortSession
	LongSession  = types.LongSession
)

const (
	FlipUnresolved = types.FlipUnresolved
	FlipFetched    = types.FlipFetched
	FlipDecoded    = types.FlipDecoded
	FlipMissing    = types.FlipMissing
	FlipFailed     = types.FlipFailed
)

const (
	AnswerNone  = types.AnswerNone
	AnswerLeft  = types.AnswerLeft
	AnswerRight = types.AnswerRight
)

const (
	GradeNone     = types.GradeNone
	GradeReported = types.GradeReported
	Grade1        = types.Grade1
	Grade2        = types.Grade2
	Grade3        = types.Grade3
	Grade4        = types.Grade4
	Grade5        = types.Grade5
)

const (
	SendTx               = types.SendTx
	ActivationTx         = types.ActivationTx
	InviteTx             = types.InviteTx
	KillTx               = types.KillTx
	SubmitFlipTx         = types.SubmitFlipTx
	SubmitAnswersHashTx  = types.SubmitAnswersHashTx
	SubmitShortAnswersTx = types.SubmitShortAnswersTx
	SubmitLongAnswersTx  = types.SubmitLongAnswersTx
	EvidenceTx           = types.EvidenceTx
	OnlineStatusTx       = types.OnlineStatusTx
	KillInviteeTx        = types.KillInviteeTx
	ChangeGodAddressTx   = types.ChangeGodAddressTx
	BurnTx               = types.BurnTx
	ChangeProfileTx      = types.ChangeProfileTx
	DeleteFlipTx         = types.DeleteFlipTx
)
