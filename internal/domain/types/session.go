package types

import "time"

// Timing anchors every deadline of a ceremony.
type Timing struct {
	ValidationStart time.Time     `json:"validation_start"`
	ShortSession    time.Duration `json:"short_session"`
	LongSession     time.Duration `json:"long_session"`
}

// ShortEnd returns the wall-clock end of the short session.
func (t Timing) ShortEnd() time.Time { return t.ValidationStart.Add(t.ShortSession) }

// LongEnd returns the wall-clock end of the long session.
func (t Timing) LongEnd() time.Time { return t.ShortEnd().Add(t.LongSession) }

// SessionSnapshot is the persisted part of one session.
type SessionSnapshot struct {
	// Hashes keeps the node's canonical order and drives answer serialization.
	Hashes []FlipHash `json:"hashes"`
	// Display is the presentation order after extra-flip replacement.
	Display []FlipHash `json:"display"`
	Flips   []Flip     `json:"flips"`
	Current int        `json:"current"`
	State   string     `json:"state"`
	// FailedStep is the step a failed session retries.
	FailedStep string `json:"failed_step,omitempty"`

	Replaced  bool `json:"replaced"`
	Finalized bool `json:"finalized"`

	CommitTx TxHash `json:"commit_tx,omitempty"`
	RevealTx TxHash `json:"reveal_tx,omitempty"`
	SubmitTx TxHash `json:"submit_tx,omitempty"`
}

// Snapshot is the resumable state of a validation run.
type Snapshot struct {
	RunID   string  `json:"run_id"`
	Epoch   Epoch   `json:"epoch"`
	Address Address `json:"address"`
	Timing  Timing  `json:"timing"`
	Phase   string  `json:"phase"`

	Short SessionSnapshot `json:"short"`
	Long  SessionSnapshot `json:"long"`

	ShortCommitted  bool `json:"short_committed"`
	ShortRevealed   bool `json:"short_revealed"`
	LongSubmitted   bool `json:"long_submitted"`
	PublicKeySent   bool `json:"public_key_sent"`
	PrivateKeysSent bool `json:"private_keys_sent"`

	Error   string    `json:"error,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}
