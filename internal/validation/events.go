package validation

import "ceremony/internal/domain"

// Event is an input to the engine. Callers use the exported event types;
// workers and timers post the unexported ones.
type Event interface{ isEvent() }

// StartSession starts the ceremony, or re-drives a resumed one.
type StartSession struct{}

// AnswerFlip sets the answer of a visible flip.
type AnswerFlip struct {
	Session domain.SessionKind
	Hash    domain.FlipHash
	Answer  domain.Answer
}

// ReportWords marks a long-session flip's keywords as irrelevant.
type ReportWords struct {
	Hash domain.FlipHash
}

// ApproveWords clears a report and optionally records a quality grade.
type ApproveWords struct {
	Hash  domain.FlipHash
	Grade domain.Grade
}

// Favorite toggles the favorite flag of a flip.
type Favorite struct {
	Session domain.SessionKind
	Hash    domain.FlipHash
}

// Navigate moves the current index by Delta, or to Index when Absolute.
type Navigate struct {
	Session  domain.SessionKind
	Delta    int
	Index    int
	Absolute bool
}

// Submit submits a session's answers before its deadline. Every solvable
// flip must be answered.
type Submit struct {
	Session domain.SessionKind
}

// RetrySubmit re-runs the step a session failed on.
type RetrySubmit struct {
	Session domain.SessionKind
}

// Cancel stops the run and releases decoded images.
type Cancel struct{}

func (StartSession) isEvent() {}
func (AnswerFlip) isEvent()   {}
func (ReportWords) isEvent()  {}
func (ApproveWords) isEvent() {}
func (Favorite) isEvent()     {}
func (Navigate) isEvent()     {}
func (Submit) isEvent()       {}
func (RetrySubmit) isEvent()  {}
func (Cancel) isEvent()       {}

type hashesResolved struct {
	session domain.SessionKind
	infos   []domain.FlipHashInfo
	err     error
}

type flipUpdated struct {
	update domain.FlipUpdate
}

type fetchDone struct {
	session domain.SessionKind
	hashes  []domain.FlipHash
}

type timerFired struct {
	transition Transition
}

type hashPoll struct {
	session domain.SessionKind
}

// txSent reports that a submission step broadcast its transaction.
type txSent struct {
	session domain.SessionKind
	step    State
	tx      domain.TxHash
}

// txDone reports that a submission step finished; err is set when the send
// or the mined wait failed.
type txDone struct {
	session domain.SessionKind
	step    State
	tx      domain.TxHash
	err     error
}

type keyStep int

const (
	publishKey keyStep = iota
	distributeKeys
)

type keyDone struct {
	step keyStep
	sent bool
	err  error
}

type keyRetry struct{}

func (hashesResolved) isEvent() {}
func (flipUpdated) isEvent()    {}
func (fetchDone) isEvent()      {}
func (timerFired) isEvent()     {}
func (hashPoll) isEvent()       {}
func (txSent) isEvent()         {}
func (txDone) isEvent()         {}
func (keyDone) isEvent()        {}
func (keyRetry) isEvent()       {}
