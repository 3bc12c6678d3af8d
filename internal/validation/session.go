package validation

import (
	"context"

	"ceremony/internal/domain"
	"ceremony/internal/protocol/answers"
)

// State is the answer sub-state of a session.
type State string

const (
	StateWaiting    State = "waiting"
	StateAnswering  State = "answering"
	StateCommitting State = "committing"
	StateCommitted  State = "committed"
	StateRevealing  State = "revealing"
	StateRevealed   State = "revealed"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
	// StateFailed holds until a RetrySubmit for the session.
	StateFailed State = "failed"
)

// Phase is the top-level ceremony state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseShort     Phase = "short-session"
	PhaseLong      Phase = "long-session"
	PhaseSucceeded Phase = "validation-succeeded"
	PhaseFailed    Phase = "validation-failed"
	PhaseCancelled Phase = "cancelled"
)

// Terminal reports whether no further transitions happen.
func (p Phase) Terminal() bool { return p == PhaseSucceeded || p == PhaseFailed }

type session struct {
	kind  domain.SessionKind
	state State
	// failedStep is the step to re-run on RetrySubmit.
	failedStep State

	resolved bool
	hashes   []domain.FlipHash
	display  []domain.FlipHash
	flips    map[domain.FlipHash]*domain.Flip
	current  int

	fetching    map[domain.FlipHash]bool
	fetchCtx    context.Context
	fetchCancel context.CancelFunc

	replaced  bool
	finalized bool

	commitTx domain.TxHash
	revealTx domain.TxHash
	submitTx domain.TxHash
}

func newSession(kind domain.SessionKind, state State) *session {
	return &session{
		kind:     kind,
		state:    state,
		flips:    make(map[domain.FlipHash]*domain.Flip),
		fetching: make(map[domain.FlipHash]bool),
	}
}

// load installs the hash list the first time it resolves and refreshes
// readiness on later polls. It returns the hashes that may be fetched now.
func (s *session) load(infos []domain.FlipHashInfo, fetchNotReady bool) []domain.FlipHash {
	if !s.resolved {
		s.resolved = true
		for _, info := range infos {
			s.hashes = append(s.hashes, info.Hash)
			s.flips[info.Hash] = &domain.Flip{Hash: info.Hash, Extra: info.Extra}
			if !info.Extra {
				s.display = append(s.display, info.Hash)
			}
		}
	}
	var out []domain.FlipHash
	for _, info := range infos {
		f, ok := s.flips[info.Hash]
		if !ok || s.fetching[info.Hash] || f.Status.Terminal() {
			continue
		}
		if info.Ready || fetchNotReady {
			out = append(out, info.Hash)
		}
	}
	return out
}

// merge applies a fetch update. A decoded flip is never downgraded.
func (s *session) merge(u domain.FlipUpdate) bool {
	f, ok := s.flips[u.Hash]
	if !ok || f.Status == domain.FlipDecoded || f.Status == domain.FlipFailed {
		return false
	}
	f.Attempts++
	f.Status = u.Status
	if u.Status == domain.FlipDecoded {
		f.Images = u.Images
		f.Orders = u.Orders
	}
	if u.Keywords != nil {
		f.Keywords = u.Keywords
	}
	return true
}

// finalize marks every flip that did not decode as failed.
func (s *session) finalize() int {
	s.finalized = true
	if s.fetchCancel != nil {
		s.fetchCancel()
	}
	n := 0
	for _, f := range s.flips {
		if f.Status != domain.FlipDecoded && f.Status != domain.FlipFailed {
			f.Status = domain.FlipFailed
			n++
		}
	}
	return n
}

func (s *session) release() {
	for _, f := range s.flips {
		f.Release()
	}
}

func (s *session) visible(hash domain.FlipHash) (*domain.Flip, bool) {
	for _, h := range s.display {
		if h == hash {
			return s.flips[h], true
		}
	}
	return nil, false
}

// counts returns the number of solvable visible flips and how many of them
// carry an answer.
func (s *session) counts() (solvable, answered int) {
	for _, h := range s.display {
		f := s.flips[h]
		if !f.Solvable() {
			continue
		}
		solvable++
		if f.Answer != domain.AnswerNone {
			answered++
		}
	}
	return solvable, answered
}

// enough applies the deadline completeness rule.
func (s *session) enough(ratio float64) bool {
	solvable, answered := s.counts()
	return solvable > 0 && float64(answered) >= ratio*float64(solvable)
}

// complete applies the manual submit rule.
func (s *session) complete() bool {
	solvable, answered := s.counts()
	return solvable > 0 && answered == solvable
}

// serialize packs answers in canonical hash order.
func (s *session) serialize() ([]byte, error) {
	records := make([]domain.Flip, 0, len(s.hashes))
	for _, h := range s.hashes {
		records = append(records, *s.flips[h])
	}
	return answers.Serialize(s.hashes, answers.FromFlips(records))
}

func (s *session) locked() bool { return s.state != StateAnswering }

// SessionView is the observable state of one session.
type SessionView struct {
	State State
	// Flips are the visible flips in display order.
	Flips     []domain.Flip
	Current   int
	Solvable  int
	Answered  int
	Finalized bool
	CommitTx  domain.TxHash
	RevealTx  domain.TxHash
	SubmitTx  domain.TxHash
}

func (s *session) view() SessionView {
	v := SessionView{
		State:     s.state,
		Current:   s.current,
		Finalized: s.finalized,
		CommitTx:  s.commitTx,
		RevealTx:  s.revealTx,
		SubmitTx:  s.submitTx,
		Flips:     make([]domain.Flip, 0, len(s.display)),
	}
	for _, h := range s.display {
		v.Flips = append(v.Flips, *s.flips[h])
	}
	v.Solvable, v.Answered = s.counts()
	return v
}

// View is published after every handled event.
type View struct {
	RunID string
	Epoch domain.Epoch
	Phase Phase
	Short SessionView
	Long  SessionView

	PublicKeySent   bool
	PrivateKeysSent bool

	Error string
}
